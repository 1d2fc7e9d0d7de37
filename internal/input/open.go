package input

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.bug.st/serial"
)

// Source kinds accepted by Open.
const (
	KindStdin  = "stdin"
	KindFile   = "file"
	KindSerial = "serial"
)

// DefaultBaudRate matches the recognition module's UART speed.
const DefaultBaudRate = 115200

var (
	// ErrUnknownKind indicates an unsupported input kind in the settings.
	ErrUnknownKind = errors.New("unknown input kind")
	// ErrPathRequired is returned when a file or serial input has no path.
	ErrPathRequired = errors.New("input path must be provided")
)

// Open starts a Source for the configured kind: stdin, a file or FIFO, or a serial port (8N1).
func Open(kind, path string, baud int) (*Source, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))

	switch kind {
	case KindStdin, "":
		// Stdin is left open for the process.
		return NewSource(os.Stdin), nil
	case KindFile:
		if path == "" {
			return nil, ErrPathRequired
		}

		f, err := openFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("open input file: %w", err)
		}

		return NewSource(f, WithCloser(f)), nil
	case KindSerial:
		if path == "" {
			return nil, ErrPathRequired
		}

		if baud <= 0 {
			baud = DefaultBaudRate
		}

		port, err := serial.Open(path, &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err != nil {
			return nil, fmt.Errorf("open serial port %s: %w", path, err)
		}

		return NewSource(port, WithCloser(port)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// openFile opens a regular file read-only. A FIFO is opened read-write: holding
// a write end keeps the pipe from reporting EOF when a writer disconnects, so
// the bridge feeding it can restart without ending the stream.
func openFile(path string) (*os.File, error) {
	flag := os.O_RDONLY

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.Mode()&os.ModeNamedPipe != 0 {
		flag = os.O_RDWR
	}

	return os.OpenFile(path, flag, 0)
}
