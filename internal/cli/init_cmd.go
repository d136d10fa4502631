package cli

import (
	"fmt"
	"os"

	"github.com/hbjs97/venv/internal/config"
	"github.com/spf13/cobra"
)

func (a *App) newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "기본 설정 파일을 생성한다",
		Args:  cobra.NoArgs,
		// 손상된 설정 파일도 덮어쓸 수 있도록 설정을 읽지 않는다.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.CfgPath); err == nil && !force {
				return fmt.Errorf("cli.init: 설정 파일이 이미 존재합니다: %s (--force로 덮어쓰기)", a.CfgPath)
			}
			if err := config.Save(a.CfgPath, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "설정 파일이 생성되었습니다: %s\n", a.CfgPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "기존 설정 파일 덮어쓰기")
	return cmd
}
