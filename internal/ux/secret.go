package ux

import (
	"bufio"
	"io"
	"strings"

	"github.com/felixgeelhaar/issuehub/internal/errors"
)

// ReadSecret reads the first line of r, for flags such as
// --password-stdin. Trailing CR/LF is removed and an empty line is an error.
func ReadSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read secret from stdin", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New(errors.ErrCodeCredentialsMissing, "no secret on stdin").
			WithSuggestion("Pipe the password, e.g. 'cat pw.txt | issuehub auth login --email you@example.com --password-stdin'")
	}
	return line, nil
}
