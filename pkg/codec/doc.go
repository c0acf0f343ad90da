// Package codec provides process record serialization and deserialization for procgen.
//
// The codec package implements the fixed-layout binary record format used for
// synthetic process descriptors, together with its human-readable hex text
// mirror. Every record is written to both forms in lockstep, one byte at a
// time, so the two representations can never diverge.
//
// # Record Format
//
// Records are serialized in a binary format with the following structure:
//
//	[ProcessID(1)][CodeSize(2)][Code][DataSize(2)][Data][EndMarker(1)]
//
// Fields:
//   - ProcessID: single byte process identifier, not required to be unique
//   - CodeSize: 16-bit unsigned integer, code segment length (big-endian)
//   - Code: CodeSize bytes of code segment
//   - DataSize: 16-bit unsigned integer, data segment length (big-endian)
//   - Data: DataSize bytes of data segment
//   - EndMarker: the sentinel byte 0xFF
//
// The total record size is: 6 bytes (overhead) + len(code) + len(data)
//
// Segments longer than 65535 bytes cannot be represented and are rejected
// with ErrInvalidLength before anything is written.
//
// # Text Format
//
// The text form holds one line per record. Every byte of the binary form
// becomes a two digit uppercase hex token followed by a single space, except
// the end marker, which is written as "FF" followed by a newline:
//
//	07 00 02 01 02 00 00 FF
//
// # Streams
//
// Records carry no cross-record state. A binary stream of concatenated records
// can be decoded with a Decoder, which reports io.EOF at a clean record
// boundary and ErrTruncatedRecord when the stream stops inside a record.
//
// # Usage
//
// Encoding to a pair of sinks:
//
//	enc := codec.NewEncoder(binFile, textFile)
//	if err := enc.EncodeRecord(0x07, code, data); err != nil {
//	    return err
//	}
//
// Decoding a stream:
//
//	dec := codec.NewDecoder(binFile)
//	for {
//	    rec, err := dec.Decode()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // use rec
//	}
//
// # Error Handling
//
// All errors wrap one of the package sentinels and can be tested with
// errors.Is:
//   - ErrSinkUnwritable: a binary or text sink rejected a write
//   - ErrInvalidLength: a segment does not fit the 16-bit length field
//   - ErrTruncatedRecord: input ended inside a record
//   - ErrBadEndMarker: the terminal byte of a record is not 0xFF
//   - ErrMalformedText: the text form is not in canonical layout
//
// # Thread Safety
//
// RecordCodec is stateless and safe for concurrent use. Encoder, Decoder and
// TextDecoder hold per-stream state and must not be shared between goroutines.
package codec
