// Package tzif implements the binary transition-table block the history
// package uses to encode a TransitionHistory: a fixed-size header, a data
// block of transition times/types, local time type records and time zone
// designations, and a footer carrying the recurring rule that governs time
// after the last transition.
//
// The layout tracks RFC 8536's version-2+ TZif data block (big-endian,
// 64-bit transition times), since that's the shape this repository's data
// already has: a sorted transition-time array, a small table of distinct
// (offset, is-dst) local time types each transition indexes into, and a
// trailing rule for the open tail. Unlike a real TZif file this package
// never negotiates a version or carries the legacy 32-bit pass -- there is
// exactly one block layout, because nothing here ever needs to read a file
// a pre-version-2 client wrote.
package tzif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

var byteOrder = binary.BigEndian

// magic opens every block, the four-octet ASCII sequence "TZif".
var magic = [4]byte{'T', 'Z', 'i', 'f'}

// blockVersion is the single format version this package reads and writes.
// It occupies the version octet of the header for readers that expect one,
// but this package never branches on it.
const blockVersion byte = '2'

// Header precedes a DataBlock and gives the size of each of its sections.
type Header struct {
	Isutcnt  uint32 // number of UT/local indicators; 0 or Typecnt
	Isstdcnt uint32 // number of standard/wall indicators; 0 or Typecnt
	Leapcnt  uint32 // number of leap-second records
	Timecnt  uint32 // number of transition times
	Typecnt  uint32 // number of local time type records; never 0
	Charcnt  uint32 // bytes of time zone designation text; never 0
}

func (h Header) write(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if _, err := w.Write([]byte{blockVersion}); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	var reserved [15]byte
	if _, err := w.Write(reserved[:]); err != nil {
		return fmt.Errorf("write reserved: %w", err)
	}
	return binary.Write(w, byteOrder, h)
}

func readHeader(r io.Reader) (Header, error) {
	var h Header
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return h, fmt.Errorf("read magic: %w", err)
	}
	if !bytes.Equal(got[:], magic[:]) {
		return h, fmt.Errorf("bad magic: %v", got)
	}
	var version [1]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return h, fmt.Errorf("read version: %w", err)
	}
	if version[0] != blockVersion {
		return h, fmt.Errorf("unsupported block version: %q", version[0])
	}
	var reserved [15]byte
	if _, err := io.ReadFull(r, reserved[:]); err != nil {
		return h, fmt.Errorf("read reserved: %w", err)
	}
	if err := binary.Read(r, byteOrder, &h); err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	return h, nil
}

// LocalTimeType is one distinct (offset, is-dst, designation) combination
// that transitions index into.
type LocalTimeType struct {
	UTOffset int32 // seconds to add to UT for local time
	IsDST    bool
	DesigIdx uint8 // index into the data block's designation text
}

// LeapRecord is a single correction applied to UTC to derive TAI, keyed by
// the UTC instant it takes effect.
type LeapRecord struct {
	Occurrence int64
	Correction int32
}

// DataBlock holds the transition table and supporting tables described by
// a Header.
type DataBlock struct {
	TransitionTimes []int64 // strictly ascending POSIX times
	TransitionTypes []uint8 // index into Types, one per transition
	Types           []LocalTimeType
	Designations    []byte // NUL-terminated designation strings, concatenated
	Leaps           []LeapRecord
	StdWallFlags    []bool
	UTLocalFlags    []bool
}

func (d DataBlock) write(w io.Writer) error {
	if err := binary.Write(w, byteOrder, d.TransitionTimes); err != nil {
		return fmt.Errorf("write transition times: %w", err)
	}
	if err := binary.Write(w, byteOrder, d.TransitionTypes); err != nil {
		return fmt.Errorf("write transition types: %w", err)
	}
	for _, t := range d.Types {
		if err := binary.Write(w, byteOrder, t); err != nil {
			return fmt.Errorf("write local time type: %w", err)
		}
	}
	if _, err := w.Write(d.Designations); err != nil {
		return fmt.Errorf("write designations: %w", err)
	}
	for _, l := range d.Leaps {
		if err := binary.Write(w, byteOrder, l); err != nil {
			return fmt.Errorf("write leap record: %w", err)
		}
	}
	if err := binary.Write(w, byteOrder, d.StdWallFlags); err != nil {
		return fmt.Errorf("write standard/wall flags: %w", err)
	}
	if err := binary.Write(w, byteOrder, d.UTLocalFlags); err != nil {
		return fmt.Errorf("write UT/local flags: %w", err)
	}
	return nil
}

func readDataBlock(r io.Reader, h Header) (DataBlock, error) {
	var d DataBlock
	if h.Timecnt > 0 {
		d.TransitionTimes = make([]int64, h.Timecnt)
		if err := binary.Read(r, byteOrder, &d.TransitionTimes); err != nil {
			return d, fmt.Errorf("read transition times: %w", err)
		}
		d.TransitionTypes = make([]uint8, h.Timecnt)
		if err := binary.Read(r, byteOrder, &d.TransitionTypes); err != nil {
			return d, fmt.Errorf("read transition types: %w", err)
		}
	}
	if h.Typecnt > 0 {
		d.Types = make([]LocalTimeType, h.Typecnt)
		for i := range d.Types {
			if err := binary.Read(r, byteOrder, &d.Types[i]); err != nil {
				return d, fmt.Errorf("read local time type %d: %w", i, err)
			}
		}
	}
	if h.Charcnt > 0 {
		d.Designations = make([]byte, h.Charcnt)
		if _, err := io.ReadFull(r, d.Designations); err != nil {
			return d, fmt.Errorf("read designations: %w", err)
		}
	}
	if h.Leapcnt > 0 {
		d.Leaps = make([]LeapRecord, h.Leapcnt)
		for i := range d.Leaps {
			if err := binary.Read(r, byteOrder, &d.Leaps[i]); err != nil {
				return d, fmt.Errorf("read leap record %d: %w", i, err)
			}
		}
	}
	if h.Isstdcnt > 0 {
		d.StdWallFlags = make([]bool, h.Isstdcnt)
		if err := binary.Read(r, byteOrder, &d.StdWallFlags); err != nil {
			return d, fmt.Errorf("read standard/wall flags: %w", err)
		}
	}
	if h.Isutcnt > 0 {
		d.UTLocalFlags = make([]bool, h.Isutcnt)
		if err := binary.Read(r, byteOrder, &d.UTLocalFlags); err != nil {
			return d, fmt.Errorf("read UT/local flags: %w", err)
		}
	}
	return d, nil
}

// Footer carries the rule text that governs local time after the block's
// last transition, framed by newlines the way RFC 8536's TZ-string footer
// is.
type Footer struct {
	Rule []byte
}

const newline = byte(0x0A)

func (f Footer) write(w io.Writer) error {
	if _, err := w.Write([]byte{newline}); err != nil {
		return err
	}
	if _, err := w.Write(f.Rule); err != nil {
		return err
	}
	_, err := w.Write([]byte{newline})
	return err
}

func readFooter(r io.Reader) (Footer, error) {
	var f Footer
	br := bufReader{r}
	if b, err := br.readByte(); err != nil {
		return f, fmt.Errorf("read opening newline: %w", err)
	} else if b != newline {
		return f, fmt.Errorf("expected opening newline, got %#x", b)
	}
	var rule []byte
	for {
		b, err := br.readByte()
		if err != nil {
			return f, fmt.Errorf("read rule: %w", err)
		}
		if b == newline {
			break
		}
		rule = append(rule, b)
	}
	f.Rule = rule
	return f, nil
}

// bufReader reads one byte at a time from an io.Reader without requiring it
// to implement io.ByteReader.
type bufReader struct {
	r io.Reader
}

func (b bufReader) readByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// Block is a complete encoded unit: header, data block and footer.
type Block struct {
	Header Header
	Data   DataBlock
	Footer Footer
}

// Encode writes the block to w.
func (b Block) Encode(w io.Writer) error {
	if err := b.Header.write(w); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := b.Data.write(w); err != nil {
		return fmt.Errorf("write data block: %w", err)
	}
	if err := b.Footer.write(w); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}
	return nil
}

// Decode reads a block previously written by Encode from r.
func Decode(r io.Reader) (Block, error) {
	var b Block
	h, err := readHeader(r)
	if err != nil {
		return b, fmt.Errorf("read header: %w", err)
	}
	b.Header = h
	b.Data, err = readDataBlock(r, h)
	if err != nil {
		return b, fmt.Errorf("read data block: %w", err)
	}
	b.Footer, err = readFooter(r)
	if err != nil {
		return b, fmt.Errorf("read footer: %w", err)
	}
	return b, nil
}
