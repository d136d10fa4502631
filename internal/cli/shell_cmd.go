package cli

import (
	"fmt"
	"sort"

	"github.com/hbjs97/venv/internal/envstore"
	"github.com/hbjs97/venv/internal/setup"
	"github.com/hbjs97/venv/internal/venv"
	"github.com/spf13/cobra"
)

func (a *App) newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [path]",
		Short: "가상환경을 활성화한 대화형 셸로 전환한다",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := envstore.FromEnviron(a.Environ())
			if err := a.activator(store).Activate(cmd.Context(), a.envRoot(args)); err != nil {
				return err
			}

			// 활성화된 PATH에서 셸을 찾는다.
			sh := setup.DefaultShell(a.cfg.Shell)
			pathList, _ := store.Lookup(venv.VarPath)
			path, err := a.Execer.LookPath(sh, pathList)
			if err != nil {
				return fmt.Errorf("cli.shell: %w", err)
			}
			a.log.Sugar().Debugf("exec %s -i", path)
			if err := a.Execer.Exec(path, []string{path, "-i"}, environ(store)); err != nil {
				return fmt.Errorf("cli.shell: %w", err)
			}
			return nil
		},
	}
}

// environ은 MapStore 내용을 정렬된 "KEY=VALUE" 목록으로 변환한다.
func environ(store *envstore.MapStore) []string {
	vars := store.Snapshot()
	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}
