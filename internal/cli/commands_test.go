package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/hbjs97/venv/internal/cli"
	"github.com/hbjs97/venv/internal/envstore"
	"github.com/hbjs97/venv/internal/fscheck"
	"github.com/hbjs97/venv/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv는 CLI 테스트용 의존성 묶음이다.
type testEnv struct {
	app       *cli.App
	store     *envstore.MapStore
	commander *testutil.FakeCommander
	execer    *testutil.FakeExecer
}

// newTestApp은 fake 의존성을 가진 App을 생성한다.
// environ은 셸 스니펫 계산에 쓰이고, store는 run/status가 사용한다.
func newTestApp(t *testing.T, environ []string, dirs ...string) *testEnv {
	t.Helper()
	store := envstore.FromEnviron(environ)
	fc := testutil.NewFakeCommander()
	fe := &testutil.FakeExecer{Paths: map[string]string{}}
	return &testEnv{
		app: &cli.App{
			Store:     store,
			Checker:   testutil.NewFakeChecker(dirs...),
			Commander: fc,
			Execer:    fe,
			Environ:   func() []string { return environ },
			CfgPath:   filepath.Join(t.TempDir(), "config.toml"),
			LogOut:    io.Discard,
		},
		store:     store,
		commander: fc,
		execer:    fe,
	}
}

// execute는 root 명령을 args로 실행하고 stdout을 반환한다.
func (e *testEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := e.app.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

var venvDirs = []string{"/opt/venv", "/opt/venv/bin"}

// --- activate / deactivate ---

func TestActivateCmd_PrintsExports(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin", "PS1=$ ", "HOME=/home/user"}, venvDirs...)

	out, err := env.execute(t, "activate", "--shell", "zsh", "/opt/venv")
	require.NoError(t, err)

	assert.Contains(t, out, "export PATH='/opt/venv/bin:/usr/bin'")
	assert.Contains(t, out, "export PS1='(venv) $ '")
	assert.Contains(t, out, "export VIRTUAL_ENV='/opt/venv'")
	assert.Contains(t, out, "export VIRTUAL_ENV_PROMPT='(venv) '")
	assert.Contains(t, out, "export _OLD_VIRTUAL_PATH='/usr/bin'")
	assert.Contains(t, out, "export _OLD_VIRTUAL_PS1='$ '")
	assert.Contains(t, out, "hash -r")
	assert.NotContains(t, out, "HOME")
}

func TestActivateCmd_Fish(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin:/bin"}, venvDirs...)

	out, err := env.execute(t, "activate", "--shell", "fish", "/opt/venv")
	require.NoError(t, err)

	assert.Contains(t, out, "set -gx PATH '/opt/venv/bin' '/usr/bin' '/bin'")
	assert.Contains(t, out, "set -gx VIRTUAL_ENV '/opt/venv'")
}

func TestActivateCmd_DoesNotTouchStore(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin"}, venvDirs...)
	before := env.store.Snapshot()

	_, err := env.execute(t, "activate", "--shell", "bash", "/opt/venv")
	require.NoError(t, err)

	assert.Equal(t, before, env.store.Snapshot())
}

func TestActivateCmd_InvalidEnvironment(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin"}, "/opt/venv")

	out, err := env.execute(t, "activate", "--shell", "bash", "/opt/venv")
	require.Error(t, err)
	assert.ErrorIs(t, err, cli.ErrInvalidEnvironment)
	assert.Equal(t, cli.ExitInvalidEnvironment, cli.MapExitCode(err))
	assert.Empty(t, out)
}

func TestActivateCmd_UnsupportedShell(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, nil, venvDirs...)

	_, err := env.execute(t, "activate", "--shell", "tcsh", "/opt/venv")
	assert.Error(t, err)
}

func TestActivateCmd_UsesConfigDefaults(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin", "PS1=$ "}, "/srv/app/.venv", "/srv/app/.venv/bin")
	env.app.CfgPath = testutil.TempConfigFile(t, `version = 1
default_env = "/srv/app/.venv"
prompt = "(app) "
`)

	out, err := env.execute(t, "activate", "--shell", "bash")
	require.NoError(t, err)

	assert.Contains(t, out, "export VIRTUAL_ENV='/srv/app/.venv'")
	assert.Contains(t, out, "export PS1='(app) $ '")
}

func TestActivateCmd_DisablePromptFromConfig(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin", "PS1=$ "}, venvDirs...)
	env.app.CfgPath = testutil.TempConfigFile(t, "version = 1\ndisable_prompt = true\n")

	out, err := env.execute(t, "activate", "--shell", "bash", "/opt/venv")
	require.NoError(t, err)

	assert.NotContains(t, out, "PS1")
	assert.NotContains(t, out, "VIRTUAL_ENV_PROMPT")
}

func TestActivateCmd_InvalidConfig(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, nil, venvDirs...)
	env.app.CfgPath = testutil.TempConfigFile(t, "version = [[[")

	_, err := env.execute(t, "activate", "--shell", "bash", "/opt/venv")
	assert.ErrorIs(t, err, cli.ErrConfig)
	assert.Equal(t, cli.ExitConfigError, cli.MapExitCode(err))
}

func TestDeactivateCmd_RestoresBackups(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{
		"PATH=/opt/venv/bin:/usr/bin",
		"PS1=(venv) $ ",
		"VIRTUAL_ENV=/opt/venv",
		"VIRTUAL_ENV_PROMPT=(venv) ",
		"_OLD_VIRTUAL_PATH=/usr/bin",
		"_OLD_VIRTUAL_PS1=$ ",
		"_OLD_VIRTUAL_PYTHONHOME=/usr/lib/python3",
	})

	out, err := env.execute(t, "deactivate", "--shell", "bash")
	require.NoError(t, err)

	assert.Contains(t, out, "export PATH='/usr/bin'")
	assert.Contains(t, out, "export PS1='$ '")
	assert.Contains(t, out, "export PYTHONHOME='/usr/lib/python3'")
	assert.Contains(t, out, "unset VIRTUAL_ENV\n")
	assert.Contains(t, out, "unset VIRTUAL_ENV_PROMPT")
	assert.Contains(t, out, "unset _OLD_VIRTUAL_PATH")
	assert.Contains(t, out, "unset _OLD_VIRTUAL_PS1")
	assert.Contains(t, out, "unset _OLD_VIRTUAL_PYTHONHOME")
}

// applySnippet은 POSIX export/unset 출력을 environ에 적용한 결과를 정렬해 반환한다.
// 작은따옴표 이스케이프가 없는 값만 다룬다.
func applySnippet(t *testing.T, environ []string, snippet string) []string {
	t.Helper()
	vars := envstore.FromEnviron(environ)
	for _, line := range strings.Split(strings.TrimSpace(snippet), "\n") {
		switch {
		case strings.HasPrefix(line, "export "):
			name, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
			require.True(t, ok, line)
			require.NoError(t, vars.Set(name, strings.Trim(value, "'")))
		case strings.HasPrefix(line, "unset "):
			require.NoError(t, vars.Unset(strings.TrimPrefix(line, "unset ")))
		}
	}
	var out []string
	for k, v := range vars.Snapshot() {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func TestActivateCmd_RoundTripWithForwardedPS1(t *testing.T) {
	t.Parallel()

	original := []string{"PATH=/usr/bin", "PS1=\\u@\\h$ "}
	env := newTestApp(t, original, venvDirs...)

	out, err := env.execute(t, "activate", "--shell", "bash", "/opt/venv")
	require.NoError(t, err)
	assert.Contains(t, out, `export PS1='(venv) \u@\h$ '`)

	active := applySnippet(t, original, out)
	env.app.Environ = func() []string { return active }

	out, err = env.execute(t, "deactivate", "--shell", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, `export PS1='\u@\h$ '`)

	assert.Equal(t, applySnippet(t, original, ""), applySnippet(t, active, out))
}

func TestActivateCmd_LeavesUnforwardedPromptAlone(t *testing.T) {
	t.Parallel()

	original := []string{"PATH=/usr/bin"}
	env := newTestApp(t, original, venvDirs...)

	out, err := env.execute(t, "activate", "--shell", "bash", "/opt/venv")
	require.NoError(t, err)
	assert.NotContains(t, out, "PS1")
	assert.Contains(t, out, "export VIRTUAL_ENV_PROMPT='(venv) '")

	active := applySnippet(t, original, out)
	env.app.Environ = func() []string { return active }

	out, err = env.execute(t, "deactivate", "--shell", "bash")
	require.NoError(t, err)
	assert.NotContains(t, out, "PS1")

	assert.Equal(t, applySnippet(t, original, ""), applySnippet(t, active, out))
}

func TestDeactivateCmd_Inactive(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin", "PS1=$ "})

	out, err := env.execute(t, "deactivate", "--shell", "zsh")
	require.NoError(t, err)
	assert.Empty(t, out)
}

// --- hook ---

func TestHookCmd_PrintsSnippet(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, nil)

	out, err := env.execute(t, "hook", "--shell", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "venv_activate()")
	assert.Contains(t, out, `PS1="$PS1" command venv activate --shell bash`)
}

func TestHookCmd_Install(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	env := newTestApp(t, nil)

	out, err := env.execute(t, "hook", "--shell", "zsh", "--install")
	require.NoError(t, err)
	assert.Contains(t, out, "설치되었습니다")

	content, err := os.ReadFile(filepath.Join(home, ".zshrc"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "venv shell integration (zsh)")

	out, err = env.execute(t, "hook", "--shell", "zsh", "--install")
	require.NoError(t, err)
	assert.Contains(t, out, "이미 설치되어 있습니다")
}

// --- status ---

func TestStatusCmd_Inactive(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin"})

	out, err := env.execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "활성화된 가상환경이 없습니다")
}

func TestStatusCmd_Active(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{
		"PATH=/opt/venv/bin:/usr/bin",
		"VIRTUAL_ENV=/opt/venv",
		"VIRTUAL_ENV_PROMPT=(venv) ",
	})

	out, err := env.execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "가상환경: /opt/venv")
	assert.Contains(t, out, `prompt: "(venv) "`)
	assert.Contains(t, out, "/opt/venv/bin")
}

// --- run ---

func TestRunCmd_RunsInsideActivation(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin", "PS1=$ "}, venvDirs...)
	before := env.store.Snapshot()

	var seenRoot, seenPath string
	env.commander.OnRun = func(string) {
		seenRoot, _ = env.store.Lookup("VIRTUAL_ENV")
		seenPath, _ = env.store.Lookup("PATH")
	}
	env.commander.Register("python -c print(1)", "1\n", nil)

	out, err := env.execute(t, "run", "--env", "/opt/venv", "python", "-c", "print(1)")
	require.NoError(t, err)

	assert.Equal(t, "1\n", out)
	assert.Equal(t, "/opt/venv", seenRoot)
	assert.Equal(t, "/opt/venv/bin:/usr/bin", seenPath)
	assert.Equal(t, before, env.store.Snapshot())
}

func TestRunCmd_DoubleDash(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin"}, venvDirs...)
	env.commander.Register("pip --version", "pip 24.0\n", nil)

	out, err := env.execute(t, "run", "-e", "/opt/venv", "--", "pip", "--version")
	require.NoError(t, err)
	assert.Equal(t, "pip 24.0\n", out)
	assert.True(t, env.commander.Called("pip --version"))
}

func TestRunCmd_PositionalPath(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin"}, venvDirs...)
	var seenRoot string
	env.commander.OnRun = func(string) {
		seenRoot, _ = env.store.Lookup("VIRTUAL_ENV")
	}
	env.commander.Register("pytest -x", "passed\n", nil)

	out, err := env.execute(t, "run", "/opt/venv", "--", "pytest", "-x")
	require.NoError(t, err)
	assert.Equal(t, "passed\n", out)
	assert.Equal(t, "/opt/venv", seenRoot)
	assert.Equal(t, 1, env.commander.CallCount("pytest"))
}

func TestRunCmd_PathAndEnvFlagConflict(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin"}, venvDirs...)

	_, err := env.execute(t, "run", "-e", "/opt/venv", "/opt/venv", "--", "pytest")
	require.Error(t, err)
	assert.Empty(t, env.commander.Calls)
}

func TestRunCmd_MissingCommand(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin"}, venvDirs...)

	_, err := env.execute(t, "run", "/opt/venv", "--")
	assert.ErrorContains(t, err, "실행할 명령이 없습니다")
}

func TestRunCmd_CommandFailureStillDeactivates(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin"}, venvDirs...)
	before := env.store.Snapshot()
	env.commander.Register("false", "", fmt.Errorf("exit status 1"))

	_, err := env.execute(t, "run", "-e", "/opt/venv", "false")
	require.Error(t, err)
	assert.Equal(t, before, env.store.Snapshot())
}

func TestRunCmd_InvalidEnvironmentSkipsCommand(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin"})

	_, err := env.execute(t, "run", "-e", "/opt/venv", "python")
	assert.ErrorIs(t, err, cli.ErrInvalidEnvironment)
	assert.Empty(t, env.commander.Calls)
}

// --- shell ---

func TestShellCmd_ExecsActivatedShell(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin", "PS1=$ ", "TERM=xterm"}, venvDirs...)
	env.app.CfgPath = testutil.TempConfigFile(t, "version = 1\nshell = \"zsh\"\n")
	env.execer.Paths["zsh"] = "/bin/zsh"

	_, err := env.execute(t, "shell", "/opt/venv")
	require.NoError(t, err)

	assert.Equal(t, "/opt/venv/bin:/usr/bin", env.execer.SearchPath)
	assert.Equal(t, "/bin/zsh", env.execer.Argv0)
	assert.Equal(t, []string{"/bin/zsh", "-i"}, env.execer.Argv)
	assert.Contains(t, env.execer.Env, "VIRTUAL_ENV=/opt/venv")
	assert.Contains(t, env.execer.Env, "PATH=/opt/venv/bin:/usr/bin")
	assert.Contains(t, env.execer.Env, "PS1=(venv) $ ")
	assert.Contains(t, env.execer.Env, "TERM=xterm")
}

func TestShellCmd_ShellNotFound(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin"}, venvDirs...)
	env.app.CfgPath = testutil.TempConfigFile(t, "version = 1\nshell = \"nosuchshell\"\n")

	_, err := env.execute(t, "shell", "/opt/venv")
	require.Error(t, err)
	assert.Empty(t, env.execer.Argv0)
}

func TestShellCmd_ExecFailure(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, []string{"PATH=/usr/bin"}, venvDirs...)
	env.app.CfgPath = testutil.TempConfigFile(t, "version = 1\nshell = \"bash\"\n")
	env.execer.Paths["bash"] = "/bin/bash"
	env.execer.Err = errors.New("permission denied")

	_, err := env.execute(t, "shell", "/opt/venv")
	assert.ErrorContains(t, err, "permission denied")
}

// --- doctor ---

func TestDoctorCmd_ReportsFailure(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, nil)

	out, err := env.execute(t, "doctor", "/opt/venv")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidEnvironment, cli.MapExitCode(err))
	assert.Contains(t, out, "[FAIL] env_root")
	assert.Contains(t, out, "Fix: python3 -m venv /opt/venv")
}

func TestDoctorCmd_Healthy(t *testing.T) {
	t.Parallel()

	root := testutil.TempEnvRoot(t)
	python := testutil.WriteExecutable(t, filepath.Join(root, "bin"), "python", "#!/bin/sh\n")

	env := newTestApp(t, nil)
	env.app.Checker = &fscheck.OSChecker{}
	env.commander.Register(python+" --version", "Python 3.12.1\n", nil)

	out, err := env.execute(t, "doctor", root)
	require.NoError(t, err)
	assert.Contains(t, out, "[OK] interpreter: Python 3.12.1")
	assert.NotContains(t, out, "FAIL")
	assert.Equal(t, 1, env.commander.CallCount(python+" --version"))
}

// --- init ---

func TestInitCmd_WritesConfig(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, nil)
	env.app.CfgPath = filepath.Join(t.TempDir(), "venv", "config.toml")

	out, err := env.execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "설정 파일이 생성되었습니다")

	content, err := os.ReadFile(env.app.CfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `default_env = "venv"`)

	_, err = env.execute(t, "init")
	assert.ErrorContains(t, err, "이미 존재합니다")

	_, err = env.execute(t, "init", "--force")
	assert.NoError(t, err)
}

func TestInitCmd_ForceRepairsInvalidConfig(t *testing.T) {
	t.Parallel()

	env := newTestApp(t, nil)
	env.app.CfgPath = testutil.TempConfigFile(t, "version = [[[")

	_, err := env.execute(t, "status")
	require.ErrorIs(t, err, cli.ErrConfig)

	_, err = env.execute(t, "init", "--force")
	require.NoError(t, err)

	_, err = env.execute(t, "status")
	assert.NoError(t, err)
}

// --- exit codes ---

func TestMapExitCode(t *testing.T) {
	t.Parallel()

	childErr := exec.Command("sh", "-c", "exit 7").Run()
	require.Error(t, childErr)

	tests := []struct {
		name string
		err  error
		want cli.ExitCode
	}{
		{name: "nil", err: nil, want: cli.ExitSuccess},
		{name: "general", err: errors.New("boom"), want: cli.ExitGeneral},
		{name: "invalid environment", err: fmt.Errorf("venv.Activate: %w", cli.ErrInvalidEnvironment), want: cli.ExitInvalidEnvironment},
		{name: "postcondition", err: fmt.Errorf("x: %w", cli.ErrPostconditionViolation), want: cli.ExitPostcondition},
		{name: "config", err: fmt.Errorf("config.Load: %w", cli.ErrConfig), want: cli.ExitConfigError},
		{name: "child exit status", err: fmt.Errorf("run: %w", childErr), want: cli.ExitCode(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cli.MapExitCode(tt.err))
		})
	}
}
