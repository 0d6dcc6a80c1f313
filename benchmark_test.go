package reqlog

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func hello(w http.ResponseWriter) { _, _ = w.Write([]byte("Hello there!")) }

func benchStack(b *testing.B, mw Stack) {
	req := httptest.NewRequest("GET", "/hello", nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mw.ServeHTTP(httptest.NewRecorder(), req)
	}
}

func BenchmarkBare(b *testing.B) { benchStack(b, New().Then(hello)) }

func BenchmarkTheUsual(b *testing.B) {
	benchStack(b, TheUsual(NewDiskLogFinalizer(io.Discard)).Then(hello))
}

func BenchmarkTheUsualQuiet(b *testing.B) {
	benchStack(b, TheUsual(NewDiskLogFinalizer(io.Discard)).Then(NoLog, hello))
}

func BenchmarkFinalizeParallel(b *testing.B) {
	f := NewDiskLogFinalizer(io.Discard)
	req := httptest.NewRequest("GET", "/", nil)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			r := NewRequest(req)
			r.Append("first entry")
			r.Append("second entry")
			f.Finalize(r)
		}
	})
}
