package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/hbjs97/venv/internal/envstore"
	"github.com/hbjs97/venv/internal/shell"
	"github.com/hbjs97/venv/internal/venv"
	"github.com/spf13/cobra"
)

func (a *App) newActivateCmd() *cobra.Command {
	var shellType string

	cmd := &cobra.Command{
		Use:   "activate [path]",
		Short: "가상환경 활성화 셸 명령을 출력한다",
		Long: `가상환경 활성화에 필요한 export 명령을 출력한다.
셸에서 eval "$(venv activate <path>)" 또는 venv hook이 정의하는 venv_activate 함수로 사용한다.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateShellType(shellType); err != nil {
				return err
			}
			out, err := a.renderActivate(cmd.Context(), a.envRoot(args), shellType)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&shellType, "shell", defaultShellType(), "셸 유형 (bash, zsh, fish)")
	return cmd
}

func (a *App) newDeactivateCmd() *cobra.Command {
	var shellType string

	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "가상환경 비활성화 셸 명령을 출력한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateShellType(shellType); err != nil {
				return err
			}
			out, err := a.renderDeactivate(cmd.Context(), shellType)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&shellType, "shell", defaultShellType(), "셸 유형 (bash, zsh, fish)")
	return cmd
}

// renderActivate는 호출한 셸의 환경을 복사한 MapStore에서 활성화를 수행하고
// 달라진 변수를 셸 명령으로 변환한다.
// 환경에 PS1이 없으면 셸이 프롬프트를 넘기지 않은 것이므로 PS1과 그 백업은 출력하지 않는다.
func (a *App) renderActivate(ctx context.Context, root, shellType string) (string, error) {
	store := envstore.FromEnviron(a.Environ())
	before := store.Snapshot()

	if err := a.activator(store).Activate(ctx, root); err != nil {
		return "", err
	}
	changes := envstore.Diff(before, store.Snapshot())
	if _, ok := before[venv.VarPS1]; !ok {
		changes = without(changes, venv.VarPS1, venv.BackupPS1)
	}
	return shell.Render(changes, shellType), nil
}

func without(changes []envstore.Change, names ...string) []envstore.Change {
	out := changes[:0:0]
	for _, c := range changes {
		if !slices.Contains(names, c.Name) {
			out = append(out, c)
		}
	}
	return out
}

func (a *App) renderDeactivate(ctx context.Context, shellType string) (string, error) {
	store := envstore.FromEnviron(a.Environ())
	before := store.Snapshot()

	if err := a.activator(store).Deactivate(ctx, false); err != nil {
		return "", err
	}
	return shell.Render(envstore.Diff(before, store.Snapshot()), shellType), nil
}
