package cli

import (
	"github.com/hbjs97/venv/internal/config"
	"github.com/hbjs97/venv/internal/venv"
)

// 각 도메인 패키지의 sentinel error를 CLI 레이어에서 편의상 re-export한다.
var (
	// ErrInvalidEnvironment는 환경 루트나 bin 디렉토리가 없을 때의 sentinel error다.
	ErrInvalidEnvironment = venv.ErrInvalidEnvironment
	// ErrPostconditionViolation는 활성화 상태 불변식이 깨졌을 때의 sentinel error다.
	ErrPostconditionViolation = venv.ErrPostconditionViolation
	// ErrConfig는 설정 파일 오류를 나타내는 sentinel error다.
	ErrConfig = config.ErrConfig
)
