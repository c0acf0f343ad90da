package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/ssargent/procgen/pkg/codec"
)

// Recover trims a stream pair back to the last record that is complete in
// both the binary and the text file. A missing binary file is not an error.
// Records and lines are matched by count; the kept pair is then verified and
// ErrMismatch is returned, together with the result, if the text does not
// mirror the binary.
func Recover(fs afero.Fs, base string) (*RecoveryResult, error) {
	startTime := time.Now()
	if fs == nil {
		fs = afero.NewOsFs()
	}

	binPath, textPath := BinaryPath(base), TextPath(base)

	binInfo, err := fs.Stat(binPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &RecoveryResult{RecoveryTime: time.Since(startTime)}, nil
		}
		return nil, err
	}

	recordEnds, partial, err := scanRecordEnds(fs, binPath)
	if err != nil {
		return nil, err
	}

	text, err := afero.ReadFile(fs, textPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	lineEnds := scanLineEnds(text)

	keep := min(len(recordEnds), len(lineEnds))

	var binSize, textSize int64
	if keep > 0 {
		binSize = recordEnds[keep-1]
		textSize = lineEnds[keep-1]
	}

	if binSize != binInfo.Size() {
		if err := truncateFile(fs, binPath, binSize); err != nil {
			return nil, err
		}
	}
	if textSize != int64(len(text)) {
		if err := truncateFile(fs, textPath, textSize); err != nil {
			return nil, err
		}
	}

	dropped := int64(len(recordEnds) - keep)
	if partial {
		dropped++
	}

	result := &RecoveryResult{
		RecordsValidated: int64(keep),
		RecordsTruncated: dropped,
		BinarySizeBefore: binInfo.Size(),
		BinarySizeAfter:  binSize,
		TextSizeBefore:   int64(len(text)),
		TextSizeAfter:    textSize,
		RecoveryTime:     time.Since(startTime),
	}

	if keep > 0 {
		if _, err := Verify(fs, base); err != nil {
			return result, fmt.Errorf("recovered pair does not verify: %w", err)
		}
	}
	return result, nil
}

// scanRecordEnds returns the end offset of every complete record and whether
// the file ends with a partial or corrupt record
func scanRecordEnds(fs afero.Fs, path string) ([]int64, bool, error) {
	reader, err := NewStreamReader(StreamReaderConfig{Fs: fs, FilePath: path})
	if err != nil {
		return nil, false, err
	}
	defer reader.Close()

	var ends []int64
	for {
		_, err := reader.ReadNext()
		if err != nil {
			if err == io.EOF {
				return ends, false, nil
			}
			if errors.Is(err, codec.ErrTruncatedRecord) || errors.Is(err, codec.ErrBadEndMarker) {
				return ends, true, nil
			}
			return nil, false, err
		}
		ends = append(ends, reader.Offset())
	}
}

// scanLineEnds returns the end offset of every newline-terminated line
func scanLineEnds(text []byte) []int64 {
	var ends []int64
	var pos int64
	for {
		i := bytes.IndexByte(text[pos:], '\n')
		if i < 0 {
			return ends
		}
		pos += int64(i) + 1
		ends = append(ends, pos)
	}
}

func truncateFile(fs afero.Fs, path string, size int64) error {
	file, err := fs.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return err
	}

	if err := file.Truncate(size); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
