package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hbjs97/venv/internal/cmdexec"
	"github.com/hbjs97/venv/internal/config"
	"github.com/hbjs97/venv/internal/envstore"
	"github.com/hbjs97/venv/internal/fscheck"
	"github.com/hbjs97/venv/internal/logging"
	"github.com/hbjs97/venv/internal/setup"
	"github.com/hbjs97/venv/internal/shell"
	"github.com/hbjs97/venv/internal/venv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App은 CLI 명령이 공유하는 의존성이다. 테스트에서는 fake를 주입한다.
type App struct {
	// Store는 run 명령이 활성화하는 환경이다. 프로덕션에서는 실제 프로세스 환경.
	Store     envstore.Store
	Checker   fscheck.Checker
	Commander cmdexec.Commander
	Execer    cmdexec.Execer
	// Environ은 셸 스니펫 계산과 셸 실행에 쓰이는 "KEY=VALUE" 목록을 반환한다.
	Environ func() []string
	CfgPath string
	Verbose bool
	// LogOut은 로그 출력 대상이다. nil이면 stderr.
	LogOut io.Writer

	cfg *config.Config
	log *zap.Logger
}

// NewApp은 실제 프로세스 환경과 파일시스템을 사용하는 App을 생성한다.
func NewApp() *App {
	return &App{
		Store:     &envstore.OSStore{},
		Checker:   &fscheck.OSChecker{},
		Commander: &cmdexec.RealCommander{},
		Execer:    &cmdexec.RealExecer{},
		Environ:   os.Environ,
		CfgPath:   defaultCfgPath(),
	}
}

// NewRootCmd는 venv CLI의 루트 명령을 생성한다.
func (a *App) NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "venv",
		Short:        "가상환경 활성화/비활성화",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.prepare()
		},
	}

	cmd.PersistentFlags().StringVar(&a.CfgPath, "config", a.CfgPath, "설정 파일 경로")
	cmd.PersistentFlags().BoolVar(&a.Verbose, "verbose", a.Verbose, "상세 출력")

	cmd.AddCommand(
		a.newActivateCmd(),
		a.newDeactivateCmd(),
		a.newHookCmd(),
		a.newStatusCmd(),
		a.newRunCmd(),
		a.newShellCmd(),
		a.newDoctorCmd(),
		a.newInitCmd(),
	)
	return cmd
}

// prepare는 설정과 로거를 준비한다.
func (a *App) prepare() error {
	cfg, err := config.Load(a.CfgPath)
	if err != nil {
		return err
	}
	out := a.LogOut
	if out == nil {
		out = os.Stderr
	}
	log, err := logging.New(out, cfg.LogLevel, a.Verbose)
	if err != nil {
		return fmt.Errorf("cli: %w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// activator는 store에 대한 상태 머신을 설정값으로 생성한다.
func (a *App) activator(store envstore.Store) *venv.Activator {
	return venv.New(store, a.Checker, venv.Options{
		Prompt:        a.cfg.Prompt,
		DisablePrompt: a.cfg.DisablePrompt,
		Logger:        a.log,
	})
}

// envRoot는 인자가 없으면 설정의 default_env를 사용한다.
func (a *App) envRoot(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.DefaultEnv
}

// defaultShellType은 --shell 기본값이다. 감지 실패 시 bash.
func defaultShellType() string {
	if sh := setup.DetectShell(); shell.IsSupported(sh) {
		return sh
	}
	return "bash"
}

func validateShellType(shellType string) error {
	if !shell.IsSupported(shellType) {
		return fmt.Errorf("cli: 지원하지 않는 셸: %s (bash, zsh, fish)", shellType)
	}
	return nil
}

func defaultCfgPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "경고: 홈 디렉토리 확인 실패: %v\n", err)
		home = "."
	}
	return filepath.Join(home, ".config", "venv", "config.toml")
}
