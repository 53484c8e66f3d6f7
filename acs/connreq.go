package acs

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nanoncore/nano-access/types"
)

// ConnectionRequest asks a device to open a CWMP session now by
// issuing a GET against its advertised connection request URL. Devices
// challenge with HTTP Digest; the second round carries the computed
// response. A nil error means the device accepted the request, the
// Inform itself arrives on the normal CWMP route.
func ConnectionRequest(ctx context.Context, client *http.Client, uri, username, password string) error {
	if uri == "" {
		return fmt.Errorf("no connection request URL")
	}
	if client == nil {
		client = http.DefaultClient
	}

	status, challenge, err := connReqRound(ctx, client, uri, "")
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}
	if status != http.StatusUnauthorized {
		return fmt.Errorf("connection request refused: status %d", status)
	}

	params := parseDigestChallenge(challenge)
	if params["realm"] == "" || params["nonce"] == "" {
		return &types.ProtocolError{Reason: "connection request challenge is not Digest"}
	}

	authz, err := digestAuthorization(uri, username, password, params)
	if err != nil {
		return err
	}
	status, _, err = connReqRound(ctx, client, uri, authz)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &types.AuthenticationError{Target: uri, User: username, Reason: fmt.Sprintf("status %d", status)}
	}
	return nil
}

func connReqRound(ctx context.Context, client *http.Client, uri, authz string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return 0, "", fmt.Errorf("building connection request: %w", err)
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", &types.ConnectionError{Target: uri, Err: err}
	}
	resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("WWW-Authenticate"), nil
}

func parseDigestChallenge(header string) map[string]string {
	params := make(map[string]string)
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, "Digest ") {
		return params
	}
	for _, part := range strings.Split(header[len("Digest "):], ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		params[kv[0]] = strings.Trim(kv[1], `"`)
	}
	return params
}

// digestAuthorization computes the MD5 Digest response for a GET on
// the challenged URL.
func digestAuthorization(uri, username, password string, challenge map[string]string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parsing connection request URL: %w", err)
	}
	path := parsed.RequestURI()

	cnonceBytes := make([]byte, 12)
	if _, err := rand.Read(cnonceBytes); err != nil {
		return "", fmt.Errorf("generating cnonce: %w", err)
	}
	cnonce := base64.StdEncoding.EncodeToString(cnonceBytes)

	realm := challenge["realm"]
	nonce := challenge["nonce"]
	qop := challenge["qop"]
	if strings.Contains(qop, ",") {
		qop = "auth"
	}

	const nc = "00000001"
	ha1 := md5hex(username + ":" + realm + ":" + password)
	ha2 := md5hex("GET:" + path)
	var response string
	if qop == "" {
		response = md5hex(ha1 + ":" + nonce + ":" + ha2)
	} else {
		response = md5hex(strings.Join([]string{ha1, nonce, nc, cnonce, qop, ha2}, ":"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Digest username=%q, realm=%q, nonce=%q, uri=%q`, username, realm, nonce, path)
	if qop != "" {
		fmt.Fprintf(&b, `, cnonce=%q, nc=%s, qop=%s`, cnonce, nc, qop)
	}
	fmt.Fprintf(&b, `, response=%q`, response)
	if opaque := challenge["opaque"]; opaque != "" {
		fmt.Fprintf(&b, `, opaque=%q`, opaque)
	}
	b.WriteString(`, algorithm=MD5`)
	return b.String(), nil
}

func md5hex(data string) string {
	sum := md5.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}
