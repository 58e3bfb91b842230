// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package fingerprint derives stable anonymous identities from request
metadata.

Listeners vote without accounts, so the server needs a voter identity that
survives page reloads without a login:

	fp, bundle := fingerprint.FromRequest(r)

The fingerprint is the hex SHA-256 of client address, User-Agent,
Accept-Language and Accept-Encoding joined with a delimiter. Same request
metadata, same fingerprint; change any field and the fingerprint changes.

# Address extraction

ClientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then
RemoteAddr with the port stripped, then the "unknown" sentinel. It never
fails on a malformed or absent header.

# Limits

This is deduplication, not authentication. Two listeners sharing a NAT and
an identical browser setup merge into one identity, and a listener who
switches browsers becomes a new one. Acceptable for song voting.
*/
package fingerprint
