// Package memory implements the byte-addressable store backing the
// datapath's load/store stage: a flat array of segments, little-endian
// word assembly, and alignment enforcement, grounded on the teacher's
// segmented virtual memory but pared down to the two segments RV32I
// instruction and data access need.
package memory

import (
	"github.com/rv32toy/rv32sim/bitvec"
	"github.com/rv32toy/rv32sim/faults"
)

const component = "memory"

// Default memory map: a 64KiB instruction segment followed by a 64KiB
// data segment, matching the hex loader's default load address.
const (
	InstructionSegmentStart = 0x00000000
	InstructionSegmentSize  = 0x00010000
	DataSegmentStart        = 0x00010000
	DataSegmentSize         = 0x00010000
)

// Segment is a named, permission-tagged span of byte storage.
type Segment struct {
	Name        string
	Start       uint32
	Size        uint32
	Data        []byte
	Writable    bool
	Executable  bool
}

// Memory is the CPU's byte-addressable address space.
type Memory struct {
	Segments   []*Segment
	ReadCount  uint64
	WriteCount uint64
}

// New builds the default instruction+data memory map.
func New() *Memory {
	m := &Memory{}
	m.AddSegment("instruction", InstructionSegmentStart, InstructionSegmentSize, false, true)
	m.AddSegment("data", DataSegmentStart, DataSegmentSize, true, false)
	return m
}

// AddSegment registers a new region of byte storage.
func (m *Memory) AddSegment(name string, start, size uint32, writable, executable bool) {
	m.Segments = append(m.Segments, &Segment{
		Name: name, Start: start, Size: size,
		Data: make([]byte, size), Writable: writable, Executable: executable,
	})
}

func (m *Memory) find(address uint32) (*Segment, uint32, error) {
	for _, seg := range m.Segments {
		if address >= seg.Start && address < seg.Start+seg.Size {
			return seg, address - seg.Start, nil
		}
	}
	return nil, 0, faults.New(component, faults.KindOutOfRange, "address 0x%08X is not mapped", address)
}

func requireAligned(address uint32, size uint32) error {
	if address%size != 0 {
		return faults.New(component, faults.KindUnaligned, "address 0x%08X is not %d-byte aligned", address, size)
	}
	return nil
}

// ReadByte returns a single byte.
func (m *Memory) ReadByte(address uint32) (byte, error) {
	seg, off, err := m.find(address)
	if err != nil {
		return 0, err
	}
	m.ReadCount++
	return seg.Data[off], nil
}

// WriteByte stores a single byte.
func (m *Memory) WriteByte(address uint32, value byte) error {
	seg, off, err := m.find(address)
	if err != nil {
		return err
	}
	if !seg.Writable {
		return faults.New(component, faults.KindUnsupported, "segment %q is not writable", seg.Name)
	}
	m.WriteCount++
	seg.Data[off] = value
	return nil
}

// ReadWord assembles a little-endian 32-bit vector from four bytes,
// via bitvec.Concat rather than host shifting.
func (m *Memory) ReadWord(address uint32) (bitvec.Vector, error) {
	if err := requireAligned(address, 4); err != nil {
		return bitvec.Vector{}, err
	}
	bytes := make([]bitvec.Vector, 4)
	for i := 0; i < 4; i++ {
		b, err := m.ReadByte(address + uint32(i))
		if err != nil {
			return bitvec.Vector{}, err
		}
		bytes[i] = byteToVector(b)
	}
	// little-endian: byte[3] is most significant
	return bitvec.Concat(bytes[3], bytes[2], bytes[1], bytes[0]), nil
}

// WriteWord stores a 32-bit vector as four little-endian bytes, subject
// to the destination segment's writable permission (this is the path a
// datapath SW instruction takes).
func (m *Memory) WriteWord(address uint32, v bitvec.Vector) error {
	if v.Width() != 32 {
		return faults.New(component, faults.KindWidthMismatch, "word write requires 32 bits, got %d", v.Width())
	}
	if err := requireAligned(address, 4); err != nil {
		return err
	}
	bytes := [4]bitvec.Vector{v.Slice(24, 32), v.Slice(16, 24), v.Slice(8, 16), v.Slice(0, 8)}
	for i := 0; i < 4; i++ {
		if err := m.WriteByte(address+uint32(i), vectorToByte(bytes[i])); err != nil {
			return err
		}
	}
	return nil
}

// LoadWord writes a 32-bit vector ignoring the segment's writable
// permission, the privileged path the loader uses to place instructions
// into the (normally read-only) instruction segment before execution
// begins.
func (m *Memory) LoadWord(address uint32, v bitvec.Vector) error {
	if v.Width() != 32 {
		return faults.New(component, faults.KindWidthMismatch, "word write requires 32 bits, got %d", v.Width())
	}
	if err := requireAligned(address, 4); err != nil {
		return err
	}
	seg, off, err := m.find(address)
	if err != nil {
		return err
	}
	bytes := [4]bitvec.Vector{v.Slice(24, 32), v.Slice(16, 24), v.Slice(8, 16), v.Slice(0, 8)}
	for i := 0; i < 4; i++ {
		seg.Data[off+uint32(i)] = vectorToByte(bytes[i])
	}
	return nil
}

// ReadHalf/WriteHalf mirror ReadWord/WriteWord at 16-bit granularity.
func (m *Memory) ReadHalf(address uint32) (bitvec.Vector, error) {
	if err := requireAligned(address, 2); err != nil {
		return bitvec.Vector{}, err
	}
	lo, err := m.ReadByte(address)
	if err != nil {
		return bitvec.Vector{}, err
	}
	hi, err := m.ReadByte(address + 1)
	if err != nil {
		return bitvec.Vector{}, err
	}
	return bitvec.Concat(byteToVector(hi), byteToVector(lo)), nil
}

func (m *Memory) WriteHalf(address uint32, v bitvec.Vector) error {
	if v.Width() != 16 {
		return faults.New(component, faults.KindWidthMismatch, "half write requires 16 bits, got %d", v.Width())
	}
	if err := requireAligned(address, 2); err != nil {
		return err
	}
	if err := m.WriteByte(address, vectorToByte(v.Slice(8, 16))); err != nil {
		return err
	}
	return m.WriteByte(address+1, vectorToByte(v.Slice(0, 8)))
}

// byteToVector/vectorToByte convert between a host byte and an 8-bit
// vector using weighted comparison/subtraction, the same discipline
// twoscomplement.buildPowers uses to avoid host shift operators on data.
func byteToVector(b byte) bitvec.Vector {
	weights := [8]int{128, 64, 32, 16, 8, 4, 2, 1}
	remaining := int(b)
	bits := make([]bool, 8)
	for i, w := range weights {
		if remaining >= w {
			bits[i] = true
			remaining -= w
		}
	}
	return bitvec.FromBits(bits)
}

func vectorToByte(v bitvec.Vector) byte {
	weights := [8]int{128, 64, 32, 16, 8, 4, 2, 1}
	total := 0
	for i := 0; i < 8; i++ {
		if v.Get(i) {
			total += weights[i]
		}
	}
	return byte(total)
}
