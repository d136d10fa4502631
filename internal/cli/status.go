package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *App) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "현재 프로세스 환경의 활성화 상태를 표시한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.activator(a.Store).State()
			out := cmd.OutOrStdout()
			if !st.Active {
				fmt.Fprintln(out, "활성화된 가상환경이 없습니다.")
				return nil
			}
			fmt.Fprintf(out, "가상환경: %s\n", st.Root)
			if st.Prompt != "" {
				fmt.Fprintf(out, "  prompt: %q\n", st.Prompt)
			}
			if len(st.Path) > 0 {
				fmt.Fprintf(out, "  PATH:   %s\n", strings.Join(st.Path, "\n          "))
			}
			return nil
		},
	}
}
