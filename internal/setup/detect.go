package setup

import (
	"os"
	"path/filepath"
)

// FallbackShell은 사용자 셸을 알 수 없을 때 사용하는 셸이다.
const FallbackShell = "/bin/sh"

// DetectShell은 $SHELL에서 현재 사용자의 셸 이름을 감지한다.
func DetectShell() string {
	sh := os.Getenv("SHELL")
	if sh == "" {
		return ""
	}
	return filepath.Base(sh)
}

// DefaultShell은 대화형 셸로 실행할 프로그램을 결정한다.
// 우선순위: override → $SHELL → FallbackShell.
func DefaultShell(override string) string {
	if override != "" {
		return override
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return FallbackShell
}
