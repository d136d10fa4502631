package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hbjs97/venv/internal/cmdexec"
	"github.com/hbjs97/venv/internal/config"
	"github.com/hbjs97/venv/internal/envstore"
	"github.com/hbjs97/venv/internal/fscheck"
	"github.com/hbjs97/venv/internal/venv"
)

// Status는 진단 결과 상태다.
type Status string

const (
	// StatusOK는 정상 상태다.
	StatusOK Status = "OK"
	// StatusWarn는 경고 상태다.
	StatusWarn Status = "WARN"
	// StatusFail는 실패 상태다.
	StatusFail Status = "FAIL"
)

// DiagResult는 하나의 진단 결과다.
type DiagResult struct {
	Name    string
	Status  Status
	Message string
	Fix     string
}

// Interpreters는 bin 디렉토리에서 찾는 인터프리터 이름이다. 앞에 있을수록 우선한다.
var Interpreters = []string{"python", "python3"}

// CheckLayout은 환경 루트와 bin 디렉토리 존재 여부를 확인한다.
func CheckLayout(ctx context.Context, checker fscheck.Checker, root string) []DiagResult {
	dirs := []struct {
		name string
		path string
	}{
		{"env_root", root},
		{"env_bin", filepath.Join(root, venv.DefaultBinDir)},
	}

	var results []DiagResult
	for _, d := range dirs {
		ok, err := checker.IsDir(ctx, d.path)
		switch {
		case err != nil:
			results = append(results, DiagResult{
				Name:    d.name,
				Status:  StatusFail,
				Message: fmt.Sprintf("%s 확인 실패: %v", d.path, err),
			})
		case !ok:
			results = append(results, DiagResult{
				Name:    d.name,
				Status:  StatusFail,
				Message: fmt.Sprintf("%s 디렉토리 없음", d.path),
				Fix:     fmt.Sprintf("python3 -m venv %s", root),
			})
		default:
			results = append(results, DiagResult{
				Name:    d.name,
				Status:  StatusOK,
				Message: d.path,
			})
		}
	}
	return results
}

// CheckInterpreter는 bin 디렉토리의 인터프리터가 실행되는지 확인한다.
func CheckInterpreter(ctx context.Context, cmd cmdexec.Commander, root string) DiagResult {
	bin := filepath.Join(root, venv.DefaultBinDir)
	for _, name := range Interpreters {
		path := filepath.Join(bin, name)
		if !fscheck.IsExecutable(path) {
			continue
		}
		out, err := cmd.Run(ctx, path, "--version")
		if err != nil {
			return DiagResult{
				Name:    "interpreter",
				Status:  StatusFail,
				Message: fmt.Sprintf("%s 실행 실패: %v", path, err),
				Fix:     fmt.Sprintf("python3 -m venv --clear %s", root),
			}
		}
		return DiagResult{
			Name:    "interpreter",
			Status:  StatusOK,
			Message: strings.TrimSpace(string(out)),
		}
	}
	return DiagResult{
		Name:    "interpreter",
		Status:  StatusWarn,
		Message: fmt.Sprintf("%s에 인터프리터 없음", bin),
		Fix:     fmt.Sprintf("python3 -m venv %s", root),
	}
}

// CheckHomeOverride는 PYTHONHOME 간섭을 확인한다.
// 활성화 중에는 PYTHONHOME이 백업되어 있어야 한다.
func CheckHomeOverride(store envstore.Store) DiagResult {
	home, _ := store.Lookup(venv.VarHome)
	if home != "" {
		return DiagResult{
			Name:    "pythonhome",
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s=%s 설정됨 — 활성화 시 해제됨", venv.VarHome, home),
			Fix:     fmt.Sprintf("unset %s", venv.VarHome),
		}
	}
	return DiagResult{
		Name:    "pythonhome",
		Status:  StatusOK,
		Message: fmt.Sprintf("%s 없음", venv.VarHome),
	}
}

// CheckActivation은 현재 활성화 상태와 백업 키 일관성을 확인한다.
func CheckActivation(store envstore.Store, root string) DiagResult {
	active, _ := store.Lookup(venv.VarVirtualEnv)
	if active == "" {
		var stale []string
		for _, key := range []string{venv.BackupPath, venv.BackupHome, venv.BackupPS1} {
			if _, ok := store.Lookup(key); ok {
				stale = append(stale, key)
			}
		}
		if len(stale) > 0 {
			return DiagResult{
				Name:    "activation",
				Status:  StatusWarn,
				Message: fmt.Sprintf("비활성 상태인데 백업 키 남음: %s", strings.Join(stale, ", ")),
				Fix:     "venv_deactivate 실행",
			}
		}
		return DiagResult{Name: "activation", Status: StatusOK, Message: "비활성"}
	}
	if filepath.Clean(active) != filepath.Clean(root) {
		return DiagResult{
			Name:    "activation",
			Status:  StatusWarn,
			Message: fmt.Sprintf("다른 환경이 활성화됨: %s", active),
			Fix:     "venv_deactivate 실행",
		}
	}
	return DiagResult{Name: "activation", Status: StatusOK, Message: fmt.Sprintf("활성: %s", active)}
}

// CheckConfig는 설정 파일 권한을 확인한다. 파일이 없으면 기본값 사용으로 본다.
func CheckConfig(cfgPath string) DiagResult {
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		return DiagResult{Name: "config", Status: StatusOK, Message: "설정 파일 없음 — 기본값 사용"}
	}
	if err := config.ValidateFilePermissions(cfgPath); err != nil {
		return DiagResult{
			Name:    "config",
			Status:  StatusWarn,
			Message: err.Error(),
			Fix:     fmt.Sprintf("chmod 600 %s", cfgPath),
		}
	}
	return DiagResult{Name: "config", Status: StatusOK, Message: cfgPath}
}

// RunAll은 모든 진단을 실행한다.
func RunAll(ctx context.Context, checker fscheck.Checker, cmd cmdexec.Commander, store envstore.Store, root, cfgPath string) []DiagResult {
	var results []DiagResult
	results = append(results, CheckLayout(ctx, checker, root)...)
	results = append(results, CheckInterpreter(ctx, cmd, root))
	results = append(results, CheckHomeOverride(store))
	results = append(results, CheckActivation(store, root))
	results = append(results, CheckConfig(cfgPath))
	return results
}

// HasFailure는 FAIL 결과가 하나라도 있는지 반환한다.
func HasFailure(results []DiagResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}
