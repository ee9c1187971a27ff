// Package netbuf is a serialization buffer for sending world state.  It frames a payload between a
// header and a footer token but implements no protocol.
package netbuf

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogo/protobuf/proto"
	"github.com/hkb3d/gohkb/gohkb"
	"github.com/pkg/errors"
)

// Token marks headers and footers in a stream.
type Token uint32

const (
	TokenInvalid Token = 0x00000000
	BeginStream  Token = 0x11000000
	EndStream    Token = 0xff00ff00
	BeginChunk2  Token = 0x00000002
	BeginChunk4  Token = 0x00000004
	BeginChunk8  Token = 0x00000008
)

// Buffer is a FIFO of encoded values.  Values must be popped with the same types they were pushed with.
type Buffer struct {
	Header, Footer Token

	pb       *proto.Buffer
	consumed int
}

func New() *Buffer {
	return &Buffer{
		Header: BeginStream,
		Footer: EndStream,
		pb:     proto.NewBuffer(nil),
	}
}

// Len returns the number of unread payload bytes (excluding the header and footer).
func (buf *Buffer) Len() int {
	return len(buf.pb.Bytes()) - buf.consumed
}

func (buf *Buffer) PushUint32(x uint32) *Buffer {
	buf.pb.EncodeFixed32(uint64(x))
	return buf
}

func (buf *Buffer) PushUint64(x uint64) *Buffer {
	buf.pb.EncodeFixed64(x)
	return buf
}

func (buf *Buffer) PushFloat64(x float64) *Buffer {
	return buf.PushUint64(math.Float64bits(x))
}

// PushInt64 appends a zigzag varint.
func (buf *Buffer) PushInt64(x int64) *Buffer {
	buf.pb.EncodeZigzag64(uint64(x))
	return buf
}

// PushBytes appends a length-prefixed byte string.
func (buf *Buffer) PushBytes(b []byte) *Buffer {
	buf.pb.EncodeRawBytes(b)
	return buf
}

func (buf *Buffer) PushVec3(v gohkb.Vec3) *Buffer {
	return buf.PushFloat64(v.X).PushFloat64(v.Y).PushFloat64(v.Z)
}

// PushEdge appends an edge's endpoint positions and branch type.
func (buf *Buffer) PushEdge(e *gohkb.Edge) *Buffer {
	return buf.PushVec3(e.A.Pos()).PushVec3(e.B.Pos()).PushInt64(int64(e.Type))
}

func (buf *Buffer) PopUint32() (uint32, error) {
	x, err := buf.pb.DecodeFixed32()
	if err != nil {
		return 0, underflow(err)
	}
	buf.consumed += 4
	return uint32(x), nil
}

func (buf *Buffer) PopUint64() (uint64, error) {
	x, err := buf.pb.DecodeFixed64()
	if err != nil {
		return 0, underflow(err)
	}
	buf.consumed += 8
	return x, nil
}

func (buf *Buffer) PopFloat64() (float64, error) {
	x, err := buf.PopUint64()
	return math.Float64frombits(x), err
}

func (buf *Buffer) PopInt64() (int64, error) {
	x, err := buf.pb.DecodeZigzag64()
	if err != nil {
		return 0, underflow(err)
	}
	buf.consumed += proto.SizeVarint(x<<1 ^ uint64(int64(x)>>63))
	return int64(x), nil
}

func (buf *Buffer) PopBytes() ([]byte, error) {
	b, err := buf.pb.DecodeRawBytes(true)
	if err != nil {
		return nil, underflow(err)
	}
	buf.consumed += proto.SizeVarint(uint64(len(b))) + len(b)
	return b, nil
}

func (buf *Buffer) PopVec3() (v gohkb.Vec3, err error) {
	for _, c := range []*float64{&v.X, &v.Y, &v.Z} {
		if *c, err = buf.PopFloat64(); err != nil {
			return
		}
	}
	return
}

// EdgeRecord is an edge as read back from a Buffer.
type EdgeRecord struct {
	A, B gohkb.Vec3
	Type gohkb.BranchType
}

func (buf *Buffer) PopEdge() (rec EdgeRecord, err error) {
	if rec.A, err = buf.PopVec3(); err != nil {
		return
	}
	if rec.B, err = buf.PopVec3(); err != nil {
		return
	}
	var t int64
	t, err = buf.PopInt64()
	rec.Type = gohkb.BranchType(t)
	return
}

func underflow(err error) error {
	return errors.Wrap(gohkb.ErrBufferUnderflow, err.Error())
}

// Frame returns the unread payload between the header and footer tokens.
func (buf *Buffer) Frame() []byte {
	payload := buf.pb.Bytes()[buf.consumed:]
	frame := proto.NewBuffer(make([]byte, 0, len(payload)+8))
	frame.EncodeFixed32(uint64(buf.Header))
	frame.SetBuf(append(frame.Bytes(), payload...))
	frame.EncodeFixed32(uint64(buf.Footer))
	return frame.Bytes()
}

// ParseFrame reads a frame written by Frame.
func ParseFrame(frame []byte) (*Buffer, error) {
	if len(frame) < 8 {
		return nil, errors.Wrapf(gohkb.ErrBufferUnderflow, "frame of %d bytes", len(frame))
	}

	tokens := proto.NewBuffer(append(frame[:4:4], frame[len(frame)-4:]...))
	header, _ := tokens.DecodeFixed32()
	footer, _ := tokens.DecodeFixed32()
	if Token(header) != BeginStream {
		return nil, errors.Wrapf(gohkb.ErrBadToken, "header %#08x", header)
	}
	if Token(footer) != EndStream {
		return nil, errors.Wrapf(gohkb.ErrBadToken, "footer %#08x", footer)
	}

	buf := New()
	buf.pb.SetBuf(append([]byte(nil), frame[4:len(frame)-4]...))
	return buf, nil
}

// String prints the unread payload as hex bytes.
func (buf *Buffer) String() string {
	var b strings.Builder
	for i, c := range buf.pb.Bytes()[buf.consumed:] {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatUint(uint64(c), 16))
	}
	return b.String()
}
