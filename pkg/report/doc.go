// Package report assembles a complete compliance report document.
//
// The package is organized by logical concern across multiple files:
//
// # Assembler (assembler.go)
//
// Assembler, Option, WithClock. Runs the section builders in the fixed
// order Header, Risk Summary, Findings, DeFi, KYC, AML/KYT, Regulatory,
// On-Chain Monitoring, Proof of Reserves, Audit Trail, Disclaimer and
// opens the KYC and Audit Trail sections on a new page when they are
// present.
//
// # Build statistics (stats.go)
//
// Stats, section identifiers. Counts presentation anomalies that were
// absorbed during a build (unmapped codes, malformed timestamps) so that
// callers can log or export them.
package report
