package cli

import (
	"fmt"

	"github.com/hbjs97/venv/internal/setup"
	"github.com/hbjs97/venv/internal/shell"
	"github.com/spf13/cobra"
)

func (a *App) newHookCmd() *cobra.Command {
	var shellType string
	var install bool

	cmd := &cobra.Command{
		Use:   "hook",
		Short: "venv_activate/venv_deactivate 셸 함수를 출력하거나 설치한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateShellType(shellType); err != nil {
				return err
			}
			if !install {
				fmt.Fprint(cmd.OutOrStdout(), shell.HookSnippet(shellType))
				return nil
			}
			rcPath := setup.ShellRCPath(shellType)
			installed, err := setup.InstallShellHook(shellType, rcPath)
			if err != nil {
				return err
			}
			if installed {
				fmt.Fprintf(cmd.OutOrStdout(), "셸 hook이 설치되었습니다: %s\n", rcPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "셸 hook이 이미 설치되어 있습니다: %s\n", rcPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&shellType, "shell", defaultShellType(), "셸 유형 (bash, zsh, fish)")
	cmd.Flags().BoolVar(&install, "install", false, "셸 RC 파일에 hook 설치")
	return cmd
}
