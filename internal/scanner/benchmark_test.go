package scanner

import (
	"fmt"
	"testing"
)

// BenchmarkParseTimestamp measures file-name stamp extraction.
func BenchmarkParseTimestamp(b *testing.B) {
	names := make([]string, 100)
	for i := range names {
		if i%4 == 0 {
			names[i] = fmt.Sprintf("notes-%d.txt", i)
			continue
		}
		names[i] = fmt.Sprintf("host-%d 2026-02-%02d 12-00-00.log", i, i%28+1)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ParseTimestamp(names[i%len(names)])
	}
}
