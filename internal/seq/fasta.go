package seq

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// ErrNoRecords is returned when a file holds no record with a sequence.
var ErrNoRecords = errors.New("no sequences found")

// maxLine allows very long single-line sequences
const maxLine = 64 * 1024 * 1024

// ParseFASTA reads a multi-FASTA stream into records.
//
// Lines before the first header are ignored, records without any residues are
// dropped, and sequences are uppercased with whitespace removed.
func ParseFASTA(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		recs    []Record
		current *Record
		body    strings.Builder
	)

	flush := func() {
		if current != nil && body.Len() > 0 {
			current.Seq = strings.ToUpper(body.String())
			recs = append(recs, *current)
		}
		current = nil
		body.Reset()
	}

	for sc.Scan() {
		line := strings.TrimFunc(sc.Text(), isBlank)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ">") {
			flush()
			name := strings.TrimSpace(line[1:])
			if name == "" {
				name = defaultName(len(recs))
			}
			current = &Record{Name: name}
			continue
		}

		if current == nil {
			continue // no header yet
		}
		body.WriteString(stripSpace(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan FASTA: %w", err)
	}
	flush()

	if len(recs) == 0 {
		return nil, ErrNoRecords
	}

	for i := range recs {
		recs[i].ID = strconv.Itoa(i)
	}
	return recs, nil
}

// isBlank is whitespace plus the byte order mark some editors write
func isBlank(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

// ReadFile parses the FASTA file at path. "-" reads from stdin and gzipped
// files are decompressed.
func ReadFile(path string) ([]Record, error) {
	rc, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer rc.Close()

	recs, err := ParseFASTA(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return recs, nil
}

// WriteFASTA writes records as FASTA with width residues per line. A width
// of zero or less writes each sequence on one line.
func WriteFASTA(w io.Writer, recs []Record, width int) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		fmt.Fprintf(bw, ">%s\n", r.Name)
		if width <= 0 {
			fmt.Fprintln(bw, r.Seq)
			continue
		}
		for i := 0; i < len(r.Seq); i += width {
			end := min(i+width, len(r.Seq))
			fmt.Fprintln(bw, r.Seq[i:end])
		}
	}
	return bw.Flush()
}

// Normalize uppercases a sequence and removes its whitespace, the same way
// sequences are read from FASTA.
func Normalize(s string) string {
	return strings.ToUpper(stripSpace(s))
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// gzipReadCloser closes both the gzip stream and the file beneath it.
type gzipReadCloser struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Close() error {
	gerr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return gerr
}

// open returns stdin for "-" and detects gzip by its magic number or suffix.
func open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var sig [2]byte
	n, _ := io.ReadFull(fh, sig[:])
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		fh.Close()
		return nil, err
	}

	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(strings.ToLower(path), ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return &gzipReadCloser{Reader: gr, file: fh}, nil
	}
	return fh, nil
}
