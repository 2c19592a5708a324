package kami

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashnet-labs/hashcheck/internal/config"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Kami) {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	kc := &config.KamiEnvConfig{
		KamiHost: ts.Listener.Addr().(*net.TCPAddr).IP.String(),
		KamiPort: fmt.Sprint(ts.Listener.Addr().(*net.TCPAddr).Port),
	}
	k, err := NewKami(kc)
	if err != nil {
		t.Fatalf("new kami: %v", err)
	}
	k.BaseURL = ts.URL
	k.client.SetBaseURL(ts.URL)
	return ts, k
}

func TestNewKami_NilConfig(t *testing.T) {
	_, err := NewKami(nil)
	if err == nil {
		t.Fatalf("expected error when cfg is nil")
	}
}

func TestSetWeights_Success(t *testing.T) {
	_, k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chain/set-weights" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"statusCode":200,"success":true,"data":"0xdeadbeef","error":null}`))
	})

	res, err := k.SetWeights(SetWeightsParams{Netuid: 1, Dests: []int{0, 1}, Weights: []int{65535, 32768}})
	if err != nil {
		t.Fatalf("SetWeights error: %v", err)
	}
	if res.Data != "0xdeadbeef" || !res.Success {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestSetWeights_HTTPError(t *testing.T) {
	_, k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad"))
	})

	if _, err := k.SetWeights(SetWeightsParams{}); err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
}

func TestSetWeights_ApplicationError(t *testing.T) {
	_, k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"statusCode":200,"success":false,"data":"","error":{"message":"weights rate limited"}}`))
	})

	if _, err := k.SetWeights(SetWeightsParams{}); err == nil {
		t.Fatalf("expected error when envelope carries an error")
	}
}

func TestGetMetagraph(t *testing.T) {
	_, k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chain/subnet-metagraph/7" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"statusCode":200,"success":true,"data":{"netuid":7,"numUids":2,"hotkeys":["a","b"],"axons":[{"ip":"10.0.0.1","port":8080},{"ip":"10.0.0.2","port":8080}]},"error":null}`))
	})

	res, err := k.GetMetagraph(7)
	if err != nil {
		t.Fatalf("GetMetagraph error: %v", err)
	}
	if res.Data.Netuid != 7 || len(res.Data.Hotkeys) != 2 || len(res.Data.Axons) != 2 {
		t.Fatalf("unexpected metagraph: %+v", res.Data)
	}
}

func TestGetLatestBlock(t *testing.T) {
	_, k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chain/latest-block" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"statusCode":200,"success":true,"data":{"blockNumber":12345},"error":null}`))
	})

	res, err := k.GetLatestBlock()
	if err != nil {
		t.Fatalf("GetLatestBlock error: %v", err)
	}
	if res.Data.BlockNumber != 12345 {
		t.Fatalf("unexpected block: %+v", res.Data)
	}
}

func TestGetKeyringPair(t *testing.T) {
	_, k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/substrate/keyring-pair-info" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"statusCode":200,"success":true,"data":{"keyringPair":{"address":"5Eq1FDc9oz1tTm4MqGLdH4ajgz9eMgQ5To812axojN121DiQ"}},"error":null}`))
	})

	res, err := k.GetKeyringPair()
	if err != nil {
		t.Fatalf("GetKeyringPair error: %v", err)
	}
	if res.Data.KeyringPair.Address == "" {
		t.Fatalf("expected address in response")
	}
}
