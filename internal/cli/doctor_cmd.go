package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/hbjs97/venv/internal/doctor"
	"github.com/spf13/cobra"
)

func (a *App) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [path]",
		Short: "가상환경과 활성화 상태를 진단한다",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(a.envRoot(args))
			if err != nil {
				return fmt.Errorf("cli.doctor: %w", err)
			}
			results := doctor.RunAll(cmd.Context(), a.Checker, a.Commander, a.Store, root, a.CfgPath)
			printDiagResults(cmd.OutOrStdout(), results)
			if doctor.HasFailure(results) {
				return fmt.Errorf("cli.doctor: %w", ErrInvalidEnvironment)
			}
			return nil
		},
	}
}

// printDiagResults는 진단 결과 목록을 출력한다.
func printDiagResults(w io.Writer, results []doctor.DiagResult) {
	for _, r := range results {
		icon := statusIcon(r.Status)
		fmt.Fprintf(w, "  [%s] %s: %s\n", icon, r.Name, r.Message)
		if r.Fix != "" {
			fmt.Fprintf(w, "      Fix: %s\n", r.Fix)
		}
	}
}

func statusIcon(s doctor.Status) string {
	switch s {
	case doctor.StatusOK:
		return "OK"
	case doctor.StatusWarn:
		return "!!"
	case doctor.StatusFail:
		return "FAIL"
	default:
		return "??"
	}
}
