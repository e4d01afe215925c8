// Package signing defines the interface of signature providers for host documents.
//
// A Provider turns file content and a signing identity into a signature artifact and checks
// presented artifacts against file content. Verification never fails with an error: every
// fault is classified into a VerificationResult with StatusError, so hosts can render it
// next to valid and invalid signatures.
//
// Registry selects a provider either by algorithm identifier or by inspecting an artifact.
// The FNV-1a provider lives in the handler subpackage.
package signing
