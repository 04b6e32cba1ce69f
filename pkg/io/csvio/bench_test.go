package csvio

import (
	"bytes"
	"context"
	"fmt"
	"testing"
)

func BenchmarkRead(b *testing.B) {
	var buf bytes.Buffer
	buf.WriteString("id,name,email,age,score\n")
	for i := 0; i < 10000; i++ {
		fmt.Fprintf(&buf, "%d,user%d,user%d@example.com,%d,%d.5\n", i, i, i, 18+i%60, i%100)
	}
	data := buf.Bytes()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		f, err := NewReader(ReaderOptions{HasHeader: true}).Read(context.Background(), bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		if f.Rows() != 10000 {
			b.Fatal("short read")
		}
	}
}
