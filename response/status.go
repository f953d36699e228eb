package response

import "net/http"

// Fetch failure codes recorded in place of an HTTP status. The values are
// part of the archive dump format and must not change.
const (
	ErrUnknown     = -12400
	ErrBlocked     = -12401
	ErrNotFound    = -12402
	ErrConnRefused = -12403
	ErrRedirect    = -12404
	ErrTruncated   = -12405
	ErrTimedOut    = -12406

	CertHasExpired                = -12501
	UnableToVerifyLeafSignature   = -12502
	UnableToGetIssuerCert         = -12503
	UnableToGetCRL                = -12504
	UnableToDecryptCertSignature  = -12505
	UnableToDecryptCRLSignature   = -12506
	UnableToDecodeIssuerPublicKey = -12507
	CertSignatureFailure          = -12508
	CRLSignatureFailure           = -12509
	CertNotYetValid               = -12510
	CRLNotYetValid                = -12511
	CRLHasExpired                 = -12512
	ErrorInCertNotBeforeField     = -12513
	ErrorInCertNotAfterField      = -12514
	ErrorInCRLLastUpdateField     = -12515
	ErrorInCRLNextUpdateField     = -12516
	OutOfMem                      = -12517
	DepthZeroSelfSignedCert       = -12518
	SelfSignedCertInChain         = -12519
	UnableToGetIssuerCertLocally  = -12520
	CertChainTooLong              = -12521
	CertRevoked                   = -12522
	InvalidCA                     = -12523
	PathLengthExceeded            = -12524
	InvalidPurpose                = -12525
	CertUntrusted                 = -12526
	CertRejected                  = -12527
)

var statusText = map[int]string{
	ErrUnknown:     "unknown error",
	ErrBlocked:     "blocked",
	ErrNotFound:    "host not found",
	ErrConnRefused: "connection refused",
	ErrRedirect:    "redirect",
	ErrTruncated:   "truncated",
	ErrTimedOut:    "timed out",

	CertHasExpired:                "certificate has expired",
	UnableToVerifyLeafSignature:   "unable to verify leaf signature",
	UnableToGetIssuerCert:         "unable to get issuer certificate",
	UnableToGetCRL:                "unable to get CRL",
	UnableToDecryptCertSignature:  "unable to decrypt certificate signature",
	UnableToDecryptCRLSignature:   "unable to decrypt CRL signature",
	UnableToDecodeIssuerPublicKey: "unable to decode issuer public key",
	CertSignatureFailure:          "certificate signature failure",
	CRLSignatureFailure:           "CRL signature failure",
	CertNotYetValid:               "certificate not yet valid",
	CRLNotYetValid:                "CRL not yet valid",
	CRLHasExpired:                 "CRL has expired",
	ErrorInCertNotBeforeField:     "error in certificate notBefore field",
	ErrorInCertNotAfterField:      "error in certificate notAfter field",
	ErrorInCRLLastUpdateField:     "error in CRL lastUpdate field",
	ErrorInCRLNextUpdateField:     "error in CRL nextUpdate field",
	OutOfMem:                      "out of memory",
	DepthZeroSelfSignedCert:       "self signed certificate",
	SelfSignedCertInChain:         "self signed certificate in chain",
	UnableToGetIssuerCertLocally:  "unable to get local issuer certificate",
	CertChainTooLong:              "certificate chain too long",
	CertRevoked:                   "certificate revoked",
	InvalidCA:                     "invalid CA certificate",
	PathLengthExceeded:            "path length constraint exceeded",
	InvalidPurpose:                "unsupported certificate purpose",
	CertUntrusted:                 "certificate not trusted",
	CertRejected:                  "certificate rejected",
}

// Failed reports whether status is a fetch failure code rather than an HTTP
// status.
func Failed(status int) bool {
	return status < 0
}

// StatusText returns a description of an HTTP status or fetch failure code.
// It returns the empty string for unknown codes.
func StatusText(status int) string {
	if Failed(status) {
		return statusText[status]
	}
	return http.StatusText(status)
}
