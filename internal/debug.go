package internal

import (
	"log"
	"os"
	"regexp"
	"slices"

	"github.com/earthboundkid/versioninfo/v2"
)

var sensitiveRegex = regexp.MustCompile(`(?i)(PASSWORD|API_KEY|ACCESS_KEY|SECRET|TOKEN)`)

func ShowVersion() {
	log.Printf("Version: %s\n", versioninfo.Short())
}

// EnvironmentVars logs the named variables, masking anything that looks
// like a credential. Unset variables are reported as such.
func EnvironmentVars(keys ...string) {
	log.Println("Environment variables")

	keys = slices.Clone(keys)
	slices.Sort(keys)
	for _, key := range keys {
		value, ok := os.LookupEnv(key)
		switch {
		case !ok:
			log.Printf("  %s: (unset)\n", key)
		case sensitiveRegex.MatchString(key):
			log.Printf("  %s: ********\n", key)
		default:
			log.Printf("  %s: %s\n", key, value)
		}
	}
}
