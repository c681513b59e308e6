// Package records reads the two plaintext records consumed by the viewer:
// a metadata record "width,height,bpx" and a flat pixel record
// "v,v,...,v". Both are a single line of comma-separated base-10 integers,
// optionally ending in an end-of-line token.
package records

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseLine splits line on commas and parses every token as a base-10
// integer. Tokens that are only an end-of-line marker are skipped.
func ParseLine(line string) ([]int, error) {
	tokens := strings.Split(line, ",")
	values := make([]int, 0, len(tokens))
	for i, token := range tokens {
		if isEndOfLine(token) {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return nil, fmt.Errorf("token %d (%q) is not an integer: %w", i, token, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func isEndOfLine(token string) bool {
	return token == "\n" || token == "\r\n"
}

// readLine returns the first line of r including its terminator, if any.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return line, nil
}
