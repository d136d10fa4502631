package cli

import (
	"context"
	"errors"

	"github.com/hbjs97/venv/internal/cmdexec"
	"github.com/spf13/cobra"
)

func (a *App) newRunCmd() *cobra.Command {
	var envRoot string

	cmd := &cobra.Command{
		Use:   "run [path] -- command [args...]",
		Short: "가상환경을 활성화한 상태에서 명령을 실행한다",
		Long: `가상환경을 활성화한 상태에서 명령을 실행하고, 종료 후 비활성화한다.
경로는 "venv run .venv -- pytest" 처럼 -- 앞에 두거나 --env로 지정한다.
둘 다 없으면 설정의 default_env를 사용한다.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, argv := splitRunArgs(args)
			if len(argv) == 0 {
				return errors.New("cli.run: 실행할 명령이 없습니다")
			}
			switch {
			case root != "" && envRoot != "":
				return errors.New("cli.run: 경로 인자와 --env를 함께 사용할 수 없습니다")
			case root == "":
				root = envRoot
			}
			if root == "" {
				root = a.cfg.DefaultEnv
			}

			stdio := cmdexec.Stdio{
				In:  cmd.InOrStdin(),
				Out: cmd.OutOrStdout(),
				Err: cmd.ErrOrStderr(),
			}
			return a.activator(a.Store).With(cmd.Context(), root, func(ctx context.Context) error {
				return a.Commander.RunAttached(ctx, stdio, argv[0], argv[1:]...)
			})
		},
	}
	cmd.Flags().StringVarP(&envRoot, "env", "e", "", "가상환경 경로 (기본: 설정의 default_env)")
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// splitRunArgs는 "path -- command..." 형태에서 경로와 명령을 나눈다.
// 플래그 파싱이 첫 위치 인자에서 멈추므로 경로 뒤의 --는 args에 그대로 남는다.
func splitRunArgs(args []string) (root string, argv []string) {
	if len(args) >= 2 && args[1] == "--" {
		return args[0], args[2:]
	}
	return "", args
}
