package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// loadBenchFixture loads a benchmark Dockerfile fixture
func loadBenchFixture(b *testing.B, name string) string {
	b.Helper()
	path := filepath.Join("..", "..", "testdata", "bench", name+".dockerfile")
	data, err := os.ReadFile(path)
	if err != nil {
		b.Fatalf("failed to read fixture: %v", err)
	}
	return string(data)
}

func benchmarkParse(b *testing.B, input string) {
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := Parse(input); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse_Simple(b *testing.B) {
	benchmarkParse(b, loadBenchFixture(b, "simple"))
}

func BenchmarkParse_Complex(b *testing.B) {
	benchmarkParse(b, loadBenchFixture(b, "complex"))
}

func BenchmarkParse_LargeFile(b *testing.B) {
	base := loadBenchFixture(b, "complex")
	benchmarkParse(b, strings.Repeat(base+"\n", 20))
}

func BenchmarkParse_ExecFallback(b *testing.B) {
	input := "FROM alpine\n" + strings.Repeat(`RUN ["a", "b", "c", "d", "e"] trailing`+"\n", 100)
	benchmarkParse(b, input)
}
