package shell

import (
	"fmt"
	"strings"

	"github.com/hbjs97/venv/internal/envstore"
)

// Supported는 지원하는 셸 유형이다.
var Supported = []string{"bash", "zsh", "fish"}

// IsSupported는 shellType이 지원되는 셸인지 반환한다.
func IsSupported(shellType string) bool {
	for _, s := range Supported {
		if s == shellType {
			return true
		}
	}
	return false
}

// Render는 환경변수 변경 목록을 셸 명령으로 변환한다.
// PATH가 바뀌면 bash/zsh에서는 명령 해시 테이블도 비운다.
func Render(changes []envstore.Change, shellType string) string {
	var b strings.Builder
	pathChanged := false
	for _, c := range changes {
		if c.Name == "PATH" {
			pathChanged = true
		}
		switch shellType {
		case "fish":
			if c.Unset {
				fmt.Fprintf(&b, "set -e %s\n", c.Name)
			} else if strings.HasSuffix(c.Name, "PATH") {
				fmt.Fprintf(&b, "set -gx %s %s\n", c.Name, fishList(c.Value))
			} else {
				fmt.Fprintf(&b, "set -gx %s %s\n", c.Name, fishQuote(c.Value))
			}
		default: // bash, zsh, sh
			if c.Unset {
				fmt.Fprintf(&b, "unset %s\n", c.Name)
			} else {
				fmt.Fprintf(&b, "export %s=%s\n", c.Name, posixQuote(c.Value))
			}
		}
	}
	if pathChanged && shellType != "fish" {
		b.WriteString("hash -r 2>/dev/null\n")
	}
	return b.String()
}

// HookSnippet는 venv_activate/venv_deactivate 셸 함수 정의를 반환한다.
// bash/zsh의 PS1은 export되지 않는 셸 변수이므로 명령 환경으로 넘겨준다.
func HookSnippet(shellType string) string {
	switch shellType {
	case "zsh", "bash":
		return fmt.Sprintf(`# venv shell integration (%[1]s)
venv_activate() {
  eval "$(PS1="$PS1" command venv activate --shell %[1]s "$@")"
}
venv_deactivate() {
  eval "$(PS1="$PS1" command venv deactivate --shell %[1]s)"
}
`, shellType)
	case "fish":
		return `# venv shell integration (fish)
function venv_activate
  command venv activate --shell fish $argv | source
end
function venv_deactivate
  command venv deactivate --shell fish | source
end
`
	default:
		return ""
	}
}

func posixQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func fishQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}

// fishList는 콜론으로 구분된 경로 값을 Fish 리스트 인자로 변환한다.
func fishList(s string) string {
	if s == "" {
		return "''"
	}
	parts := strings.Split(s, ":")
	for i, p := range parts {
		parts[i] = fishQuote(p)
	}
	return strings.Join(parts, " ")
}
