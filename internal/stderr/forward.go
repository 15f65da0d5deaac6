package stderr

import (
	"bufio"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// forward reads lines from r until EOF and passes the non-blank ones to emit.
func forward(r io.Reader, emit func(string)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			emit(line)
		}
	}
}

func logLine(line string) {
	log.Warn().Str("component", "stderr").Msg(line)
}
