package cli

import (
	"errors"
	"os/exec"
)

// ExitCode는 venv의 종료 코드다.
type ExitCode int

const (
	// ExitSuccess는 정상 종료다.
	ExitSuccess ExitCode = 0
	// ExitGeneral는 일반 에러다.
	ExitGeneral ExitCode = 1
	// ExitInvalidEnvironment는 유효하지 않은 가상환경이다.
	ExitInvalidEnvironment ExitCode = 2
	// ExitPostcondition는 활성화 상태 불변식 위반이다.
	ExitPostcondition ExitCode = 3
	// ExitConfigError는 설정 파일 오류다.
	ExitConfigError ExitCode = 5
)

// MapExitCode는 sentinel error를 기반으로 적절한 종료 코드를 반환한다.
// venv run으로 실행한 명령이 실패하면 그 명령의 종료 코드를 그대로 쓴다.
func MapExitCode(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, ErrInvalidEnvironment):
		return ExitInvalidEnvironment
	case errors.Is(err, ErrPostconditionViolation):
		return ExitPostcondition
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.As(err, &exitErr) && exitErr.ExitCode() > 0:
		return ExitCode(exitErr.ExitCode())
	default:
		return ExitGeneral
	}
}
