package artifact

import (
	"bytes"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	text := map[uint32]uint32{
		0: 0x00500513, // addi a0, zero, 5
		4: 0x00000073, // ecall
	}
	data := map[uint32]uint8{
		0x10000000: 0x2A,
		0x10000001: 0x00,
	}

	var buf bytes.Buffer
	if err := Write(&buf, text, data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	art, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(art.Text) != 2 || art.Text[0] != text[0] || art.Text[4] != text[4] {
		t.Fatalf("text section mismatch: %+v", art.Text)
	}
	if len(art.Data) != 2 || art.Data[0x10000000] != 0x2A {
		t.Fatalf("data section mismatch: %+v", art.Data)
	}
}

func TestWriteProducesEndOfTextSentinel(t *testing.T) {
	text := map[uint32]uint32{0: 0x00000073}
	var buf bytes.Buffer
	if err := Write(&buf, text, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("END_OF_TEXT")) {
		t.Fatalf("expected END_OF_TEXT sentinel in output:\n%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("0x00000004 0x00000000")) {
		t.Fatalf("expected sentinel line at end+4:\n%s", buf.String())
	}
}

func TestReadEmptyTextSegment(t *testing.T) {
	art, err := Read(bytes.NewBufferString("0x00000000 0x00000000 , END_OF_TEXT\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(art.Text) != 0 {
		t.Fatalf("expected no text entries, got %+v", art.Text)
	}
}

func TestReadRejectsMalformedLine(t *testing.T) {
	if _, err := Read(bytes.NewBufferString("not a valid line\n")); err == nil {
		t.Fatal("expected a parse error for a malformed line")
	}
}
