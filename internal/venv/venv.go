package venv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hbjs97/venv/internal/envstore"
	"github.com/hbjs97/venv/internal/fscheck"
	"go.uber.org/zap"
)

// 활성화 상태를 구성하는 환경변수 이름이다.
const (
	VarVirtualEnv    = "VIRTUAL_ENV"
	VarPrompt        = "VIRTUAL_ENV_PROMPT"
	VarDisablePrompt = "VIRTUAL_ENV_DISABLE_PROMPT"
	VarPath          = "PATH"
	VarHome          = "PYTHONHOME"
	VarPS1           = "PS1"

	BackupPath = "_OLD_VIRTUAL_PATH"
	BackupHome = "_OLD_VIRTUAL_PYTHONHOME"
	BackupPS1  = "_OLD_VIRTUAL_PS1"
)

const (
	// DefaultPrompt는 활성화 시 PS1 앞에 붙는 접두어다.
	DefaultPrompt = "(venv) "
	// DefaultBinDir는 PATH에 추가되는 환경 루트 하위 디렉토리다.
	DefaultBinDir = "bin"
)

var (
	// ErrInvalidEnvironment는 환경 루트 또는 bin 디렉토리가 없을 때 반환된다.
	ErrInvalidEnvironment = errors.New("유효하지 않은 가상환경")
	// ErrPostconditionViolation는 activate/deactivate 후 마커 상태가 기대와 다를 때 반환된다.
	ErrPostconditionViolation = errors.New("활성화 상태 사후조건 위반")
)

// backups는 활성화가 덮어쓰는 변수와 그 백업 키 쌍이다. 복원 순서이기도 하다.
var backups = []struct {
	variable string
	key      string
}{
	{VarPath, BackupPath},
	{VarHome, BackupHome},
	{VarPS1, BackupPS1},
}

// Options는 Activator 동작 설정이다.
type Options struct {
	// Prompt는 PS1 접두어다. 비어있으면 DefaultPrompt.
	Prompt string
	// DisablePrompt가 true면 VIRTUAL_ENV_DISABLE_PROMPT가 설정된 것처럼 동작한다.
	DisablePrompt bool
	// Logger가 nil이면 로그를 남기지 않는다.
	Logger *zap.Logger
}

// Activator는 하나의 Store에 대한 활성화 상태 머신이다.
// Store가 sync.Locker를 구현하면 같은 Store를 쓰는 모든 Activator의 호출이 그 lock으로 직렬화된다.
// envstore.OSStore는 프로세스 전역 lock을 공유한다. 그 외 Store는 Activator마다 lock을 가진다.
// 서로 다른 goroutine에서 With 범위가 겹치는 것은 지원하지 않는다.
type Activator struct {
	store   envstore.Store
	checker fscheck.Checker
	log     *zap.Logger
	prompt  string
	noPS1   bool

	mu sync.Locker
}

// New는 store와 checker를 사용하는 Activator를 생성한다.
func New(store envstore.Store, checker fscheck.Checker, opts Options) *Activator {
	a := &Activator{
		store:   store,
		checker: checker,
		log:     opts.Logger,
		prompt:  opts.Prompt,
		noPS1:   opts.DisablePrompt,
		mu:      &sync.Mutex{},
	}
	if l, ok := store.(sync.Locker); ok {
		a.mu = l
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.prompt == "" {
		a.prompt = DefaultPrompt
	}
	return a
}

// Activate는 envRoot 가상환경을 활성화한다.
// envRoot와 envRoot/bin이 디렉토리가 아니면 환경을 건드리지 않고 ErrInvalidEnvironment를 반환한다.
func (a *Activator) Activate(ctx context.Context, envRoot string) error {
	a.log.Debug("activate", zap.String("root", envRoot))

	root, bin, err := a.validate(ctx, envRoot)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.log.Info("activating environment", zap.String("root", root))

	if err := a.deactivate(true); err != nil {
		return fmt.Errorf("venv.Activate: %w", err)
	}

	if err := a.store.Set(VarVirtualEnv, root); err != nil {
		return fmt.Errorf("venv.Activate: %w", err)
	}

	path, _ := a.store.Lookup(VarPath)
	if err := a.store.Set(BackupPath, path); err != nil {
		return fmt.Errorf("venv.Activate: %w", err)
	}
	if err := a.store.Set(VarPath, prependPath(bin, path)); err != nil {
		return fmt.Errorf("venv.Activate: %w", err)
	}

	// 빈 문자열 PYTHONHOME은 설정되지 않은 것으로 본다.
	if home, _ := a.store.Lookup(VarHome); home != "" {
		if err := a.store.Set(BackupHome, home); err != nil {
			return fmt.Errorf("venv.Activate: %w", err)
		}
		if err := a.store.Unset(VarHome); err != nil {
			return fmt.Errorf("venv.Activate: %w", err)
		}
	}

	if !a.promptDisabled() {
		ps1, _ := a.store.Lookup(VarPS1)
		if err := a.store.Set(BackupPS1, ps1); err != nil {
			return fmt.Errorf("venv.Activate: %w", err)
		}
		if err := a.store.Set(VarPrompt, a.prompt); err != nil {
			return fmt.Errorf("venv.Activate: %w", err)
		}
		if err := a.store.Set(VarPS1, a.prompt+ps1); err != nil {
			return fmt.Errorf("venv.Activate: %w", err)
		}
	}

	if !a.isActive() {
		return fmt.Errorf("venv.Activate: %w: %s 미설정", ErrPostconditionViolation, VarVirtualEnv)
	}
	return nil
}

// Deactivate는 백업 키가 있는 변수만 복원하고 활성화 마커를 제거한다.
// 두 번 호출해도 두 번째 호출은 아무것도 바꾸지 않는다.
// 빈 백업 값은 변수 제거로 복원되므로, 활성화 전에 ""로 설정되어 있던 변수는 비활성화 후 사라진다.
// nondestructive는 호환용 플래그이며 동작에 영향을 주지 않는다.
func (a *Activator) Deactivate(ctx context.Context, nondestructive bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.deactivate(nondestructive); err != nil {
		return fmt.Errorf("venv.Deactivate: %w", err)
	}
	return nil
}

func (a *Activator) deactivate(nondestructive bool) error {
	a.log.Info("deactivating environment", zap.Bool("nondestructive", nondestructive))

	for _, b := range backups {
		old, ok := a.store.Lookup(b.key)
		if !ok {
			continue
		}
		// 빈 백업은 활성화 전에 변수가 없었거나 비어있었다는 뜻이다.
		if old == "" {
			if err := a.store.Unset(b.variable); err != nil {
				return err
			}
		} else if err := a.store.Set(b.variable, old); err != nil {
			return err
		}
		if err := a.store.Unset(b.key); err != nil {
			return err
		}
		a.log.Debug("restored", zap.String("variable", b.variable))
	}

	if err := a.store.Unset(VarVirtualEnv); err != nil {
		return err
	}
	if err := a.store.Unset(VarPrompt); err != nil {
		return err
	}

	if a.isActive() {
		return fmt.Errorf("%w: %s 잔존", ErrPostconditionViolation, VarVirtualEnv)
	}
	return nil
}

// With는 envRoot를 활성화한 상태에서 fn을 실행하고, 어떤 경로로 끝나든 비활성화한다.
// 활성화가 실패하면 fn도 비활성화도 실행하지 않는다.
// fn이 panic하면 비활성화 후 panic을 다시 전파한다.
func (a *Activator) With(ctx context.Context, envRoot string, fn func(ctx context.Context) error) (err error) {
	if err := a.Activate(ctx, envRoot); err != nil {
		return err
	}
	defer func() {
		if derr := a.Deactivate(context.WithoutCancel(ctx), false); derr != nil {
			err = errors.Join(err, derr)
		}
	}()
	return fn(ctx)
}

// IsActive는 VIRTUAL_ENV가 비어있지 않게 설정되어 있는지 반환한다.
func (a *Activator) IsActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isActive()
}

func (a *Activator) isActive() bool {
	v, ok := a.store.Lookup(VarVirtualEnv)
	return ok && v != ""
}

// State는 현재 활성화 상태의 스냅샷이다.
type State struct {
	Active bool
	Root   string
	Prompt string
	Path   []string
}

// State는 Store에서 현재 활성화 상태를 읽는다.
func (a *Activator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	root, _ := a.store.Lookup(VarVirtualEnv)
	prompt, _ := a.store.Lookup(VarPrompt)
	path, _ := a.store.Lookup(VarPath)
	return State{
		Active: root != "",
		Root:   root,
		Prompt: prompt,
		Path:   SplitPath(path),
	}
}

func (a *Activator) validate(ctx context.Context, envRoot string) (root, bin string, err error) {
	if strings.TrimSpace(envRoot) == "" {
		return "", "", fmt.Errorf("venv.Activate: %w: 경로가 비어있습니다", ErrInvalidEnvironment)
	}
	root, err = filepath.Abs(envRoot)
	if err != nil {
		return "", "", fmt.Errorf("venv.Activate: %w: %v", ErrInvalidEnvironment, err)
	}
	bin = filepath.Join(root, DefaultBinDir)
	for _, dir := range []string{root, bin} {
		ok, err := a.checker.IsDir(ctx, dir)
		if err != nil {
			return "", "", fmt.Errorf("venv.Activate: %w", err)
		}
		if !ok {
			return "", "", fmt.Errorf("venv.Activate: %w: %s 디렉토리가 없습니다", ErrInvalidEnvironment, dir)
		}
	}
	return root, bin, nil
}

func (a *Activator) promptDisabled() bool {
	if a.noPS1 {
		return true
	}
	v, _ := a.store.Lookup(VarDisablePrompt)
	return v != ""
}

func prependPath(dir, path string) string {
	if path == "" {
		return dir
	}
	return dir + string(filepath.ListSeparator) + path
}

// SplitPath는 PATH 값을 디렉토리 목록으로 나눈다. 빈 값은 nil이다.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return filepath.SplitList(path)
}
