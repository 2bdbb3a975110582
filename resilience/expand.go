package resilience

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvStrict expands $VAR and ${VAR} references in a config document.
// A ${VAR} naming an unset variable is an error; $$ yields a literal $.
func expandEnvStrict(s string) (string, error) {
	const dollar = "\x00resilience-dollar\x00"
	s = strings.ReplaceAll(s, "$$", dollar)

	var missing []string
	for _, m := range envRefPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := os.LookupEnv(m[1]); !ok && !slices.Contains(missing, m[1]) {
			missing = append(missing, m[1])
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: unset environment variables: %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}

	s = os.ExpandEnv(s)
	return strings.ReplaceAll(s, dollar, "$"), nil
}
