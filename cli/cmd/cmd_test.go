package cmd_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd"
	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/verify"
	"ocm.software/open-component-model/bindings/go/fnv/signing/attach/filesystem"
	"ocm.software/open-component-model/bindings/go/fnv/signing/envelope"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := cmd.New()
	c.SetOut(&out)
	c.SetErr(&errOut)
	c.SetArgs(args)
	err := c.ExecuteContext(t.Context())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const config = `type: FNVSigningConfiguration/v1alpha1
certificates:
- issuer: CA1
  subject: Alice
  thumbprint: a1
  publicKeyOid: fnva-1
- issuer: CA2
  subject: Bob
  thumbprint: b0b
`

func TestSignVerify_Local(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	hello := writeFile(t, filepath.Join(dir, "hello.txt"), "hello")
	world := writeFile(t, filepath.Join(dir, "world.txt"), "world")
	cfg := writeFile(t, filepath.Join(dir, "config.yaml"), config)
	sig := filepath.Join(dir, "hello.txt.sig")

	_, err := run(t, "sign", hello, "--config", cfg, "--certificate", "a1", "--out", sig)
	r.NoError(err)

	data, err := os.ReadFile(sig)
	r.NoError(err)
	env, err := envelope.Decode(data)
	r.NoError(err)
	r.Equal("4f9f2cab", env.FileHash)
	r.Equal("Alice", env.Subject)
	r.Equal("CA1", env.Issuer)
	r.Equal("fnva-1", env.PublicKeyOID)

	out, err := run(t, "verify", hello, sig, "-o", "json")
	r.NoError(err)
	var results []verify.Result
	r.NoError(json.Unmarshal([]byte(out), &results))
	r.Len(results, 1)
	r.Equal("Valid", results[0].Status)
	r.Equal("Alice", results[0].SignerName)
	r.Equal("CA1", results[0].IssuerName)

	out, err = run(t, "verify", world, sig, "-o", "json")
	r.ErrorContains(err, "SIGNATURE VERIFICATION FAILED")
	r.NoError(json.Unmarshal([]byte(out), &results))
	r.Equal("Invalid", results[0].Status)
	r.Equal("The file hashes don't match", results[0].Error)
}

func TestSign_Stdout(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	hello := writeFile(t, filepath.Join(dir, "hello.txt"), "hello")

	out, err := run(t, "sign", hello)
	r.NoError(err)
	env, err := envelope.Decode([]byte(strings.TrimSpace(out)))
	r.NoError(err)
	r.Equal("Седов Вячеслав Иванович", env.Subject)
	r.Equal("Test Certificate Issuer", env.Issuer)
}

func TestSign_RejectsForeignAlgorithm(t *testing.T) {
	dir := t.TempDir()
	hello := writeFile(t, filepath.Join(dir, "hello.txt"), "hello")
	cfg := writeFile(t, filepath.Join(dir, "config.yaml"), `type: FNVSigningConfiguration/v1alpha1
certificates:
- subject: Carol
  issuer: CA3
  thumbprint: c
  publicKeyOid: 1.2.840.113549.1.1.1
`)
	_, err := run(t, "sign", hello, "--config", cfg)
	require.Error(t, err)
}

func TestVerify_Imported(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	hello := writeFile(t, filepath.Join(dir, "hello.txt"), "hello")
	garbage := writeFile(t, filepath.Join(dir, "garbage.sig"), "not a signature")
	sig := filepath.Join(dir, "hello.txt.sig")

	_, err := run(t, "sign", hello, "--out", sig)
	r.NoError(err)

	out, err := run(t, "verify", hello, sig, garbage, "--imported", "-o", "yaml", "--concurrency-limit", "1")
	r.ErrorContains(err, "1 of 2 signatures are not valid")

	var results []verify.Result
	r.NoError(yaml.Unmarshal([]byte(out), &results))
	r.Len(results, 2)
	r.Equal("Valid", results[0].Status)
	r.Equal("fnva-1", results[0].PublicKeyOID)
	r.Equal("NotCades", results[0].SignatureType)
	r.Equal("Error", results[1].Status)
	r.Empty(results[1].PublicKeyOID)
	r.NotEmpty(results[1].Error)
}

func TestSignVerify_Document(t *testing.T) {
	r := require.New(t)
	root := t.TempDir()
	docDir := filepath.Join(root, "doc-1")
	writeFile(t, filepath.Join(docDir, filesystem.ManifestFileName), `files:
- name: contract.pdf
  bodyId: body-1
  signatureRequests:
  - id: r1
  - id: r2
`)
	writeFile(t, filepath.Join(docDir, "contract.pdf"), "hello")

	_, err := run(t, "sign", "contract.pdf", "--document", docDir, "--request", "r1,unknown")
	r.NoError(err)

	m, err := filesystem.New(root).Load("doc-1")
	r.NoError(err)
	r.Len(m.Attachments, 1)
	r.Equal("contract.pdf.r1.sig", m.Attachments[0].Name)
	req, ok := m.Files[0].SignatureRequest("r1")
	r.True(ok)
	r.Equal(m.Attachments[0].ID.String(), req.SignID)
	r.Equal("fnva-1", req.PublicKeyOID)

	out, err := run(t, "verify", "contract.pdf", "--document", docDir)
	r.NoError(err)
	r.Contains(out, "contract.pdf.r1.sig")
	r.Contains(out, "Valid")

	writeFile(t, filepath.Join(docDir, "contract.pdf"), "changed")
	_, err = run(t, "verify", "contract.pdf", "--document", docDir)
	r.ErrorContains(err, "SIGNATURE VERIFICATION FAILED")
}

func TestSign_RequestWithoutDocument(t *testing.T) {
	dir := t.TempDir()
	hello := writeFile(t, filepath.Join(dir, "hello.txt"), "hello")
	_, err := run(t, "sign", hello, "--request", "r1")
	require.Error(t, err)
}

func TestCertificates(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	cfg := writeFile(t, filepath.Join(dir, "config.yaml"), config)

	out, err := run(t, "certificates", "--config", cfg)
	r.NoError(err)
	r.Contains(out, "Alice")
	r.Contains(out, "b0b")

	out, err = run(t, "certificates", "-o", "json")
	r.NoError(err)
	r.Contains(out, `"thumbprint": "04"`)
}

func TestDigest(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	empty := writeFile(t, filepath.Join(dir, "empty"), "")
	a := writeFile(t, filepath.Join(dir, "a"), "a")

	out, err := run(t, "digest", empty, a)
	r.NoError(err)
	r.Equal("811c9dc5  "+empty+"\ne40c292c  "+a+"\n", out)

	_, err = run(t, "digest", filepath.Join(dir, "missing"))
	r.Error(err)
}

func TestVersion(t *testing.T) {
	r := require.New(t)
	out, err := run(t, "version")
	r.NoError(err)
	var info map[string]any
	r.NoError(json.Unmarshal([]byte(out), &info))
	r.Contains(info, "gitVersion")
}
