package pacer_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/adamwoolhether/pacer"
	"github.com/adamwoolhether/pacer/client"
)

func ExampleNewClient() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"msg":"hello"}`)
	}))
	defer ts.Close()

	c, err := pacer.NewClient(
		client.WithTimeout(5*time.Second),
		client.WithInterval(50*time.Millisecond),
	)
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	d := client.Descriptor{Method: http.MethodGet, URL: ts.URL}

	for range 2 {
		v, err := c.FetchJSON(context.Background(), d)
		if err != nil {
			fmt.Println("fetch error:", err)
			return
		}
		fmt.Println(v.(map[string]any)["msg"])
	}
	// Output:
	// hello
	// hello
}
