package client_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/adamwoolhether/pacer/client"
)

func ExampleBuild() {
	c, err := client.Build(
		client.WithTimeout(10*time.Second),
		client.WithUserAgent("example/1.0"),
		client.WithInterval(100*time.Millisecond),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	_ = c
	fmt.Println("client built")
	// Output: client built
}

func ExampleURL() {
	u := client.URL("https", "example.com", "/api/v1",
		client.WithPort(8443),
		client.WithQueryStrings(map[string]string{"key": "value"}),
	)

	fmt.Println(u.String())
	// Output: https://example.com:8443/api/v1?key=value
}

func ExampleClient_FetchJSON() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"q":%q}`, r.URL.Query().Get("q"))
	}))
	defer ts.Close()

	c, err := client.Build()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	d := client.Descriptor{
		Method: http.MethodGet,
		URL:    ts.URL,
		Params: map[string]string{"q": "gopher"},
	}

	v, err := c.FetchJSON(context.Background(), d)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(v.(map[string]any)["q"])
	// Output: gopher
}

func ExampleFetchAs() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"pacer","stars":42}`)
	}))
	defer ts.Close()

	type repo struct {
		Name  string `json:"name"`
		Stars int    `json:"stars"`
	}

	c, err := client.Build()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	r, err := client.FetchAs[repo](context.Background(), c, client.Descriptor{Method: http.MethodGet, URL: ts.URL})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(r.Name, r.Stars)
	// Output: pacer 42
}

func ExampleError() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"nf"}`)
	}))
	defer ts.Close()

	c, err := client.Build()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	_, err = c.FetchData(context.Background(), client.Descriptor{Method: http.MethodGet, URL: ts.URL})

	var ne *client.Error
	if errors.As(err, &ne) {
		fmt.Println(ne.Kind, ne.StatusCode, ne.Body)
	}
	// Output: http status 404 map[error:nf]
}
