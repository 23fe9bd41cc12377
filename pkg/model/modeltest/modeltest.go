// Package modeltest provides shared screening payload fixtures for tests.
package modeltest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amlscreen/amlreport/pkg/model"
)

// Hashes long enough to exercise display abbreviation.
const (
	MixerHash1  = "0x9f6a1c3b2e4d5f60718293a4b5c6d7e8f9012345678901234567890abcdef12"
	MixerHash2  = "0x1b2c3d4e5f60718293a4b5c6d7e8f9012345678901234567890abcdef123456"
	MixerHash3  = "0x77aa88bb99cc00dd11ee22ff33aa44bb55cc66dd77ee88ff99aa00bb11cc22dd"
	Address     = "0x742d35Cc6634C0532925a3b844Bc9e7595f2bD1e"
	ReportID    = "AML-TEST-HIGH-RISK"
	ReportStamp = "2025-02-15T10:00:00Z"
)

// HighRiskJSON is a full payload: a HIGH/85/BLOCK report whose funds went
// through a mixer, a bridge and a DEX, with every compliance sub-record.
const HighRiskJSON = `{
  "report": {
    "id": "AML-TEST-HIGH-RISK",
    "timestamp": "2025-02-15T10:00:00Z",
    "input": {"chain": "ethereum", "address": "0x742d35Cc6634C0532925a3b844Bc9e7595f2bD1e"},
    "decision": {
      "level": "HIGH",
      "score": 85,
      "recommendation": "BLOCK",
      "summary": "Funds went through DEX + Bridge + Mixer. Recent wallet with multiple opaque hops."
    },
    "findings": [
      {"source": "OFAC/SDN", "severity": "CRITICAL", "detail": "Address interacted with a sanctioned contract (Tornado Cash Router)."},
      {"source": "DeFi Analysis", "severity": "HIGH", "detail": "Cross-chain bridge usage: Wormhole, Synapse Bridge.", "category": "bridge"},
      {"source": "On-Chain Heuristics", "severity": "MEDIUM", "detail": "Balance close to zero with 89 transactions. Possible relay wallet."}
    ],
    "defiAnalysis": {
      "mixerInteractions": [
        {"name": "Tornado Cash Router", "type": "mixer", "risk": "CRITICAL", "hash": "0x9f6a1c3b2e4d5f60718293a4b5c6d7e8f9012345678901234567890abcdef12", "direction": "OUT (deposit)"},
        {"name": "Tornado Cash 10 ETH", "type": "mixer", "risk": "CRITICAL", "hash": "0x1b2c3d4e5f60718293a4b5c6d7e8f9012345678901234567890abcdef123456", "direction": "OUT (deposit)"},
        {"name": "Tornado Cash 1 ETH", "type": "mixer", "risk": "CRITICAL", "hash": "0x77aa88bb99cc00dd11ee22ff33aa44bb55cc66dd77ee88ff99aa00bb11cc22dd", "direction": "IN (withdrawal)"}
      ],
      "bridgeInteractions": [
        {"name": "Wormhole", "hash": "0xjkl012", "direction": "OUT (bridging)"},
        {"name": "Synapse Bridge", "hash": "0xmno345", "direction": "IN (received)"}
      ],
      "dexInteractions": [
        {"name": "Uniswap V3 Router", "hash": "0xpqr678"},
        {"name": "1inch V5 Router", "hash": "0xstu901"}
      ],
      "opaqueHops": 5,
      "summary": {
        "usedMixer": true,
        "usedBridge": true,
        "usedDex": true,
        "suspiciousPattern": true,
        "patternDescription": "Funds went through Mixer + Bridge + DEX. Classic origin obfuscation pattern."
      }
    },
    "sources": {
      "ofac": {"enabled": true, "match": true},
      "explorer": {"enabled": true, "data": {
        "balance": "0.0001 ETH", "txCount": 89, "tokenTxCount": 45,
        "stablecoinTxCount": 38, "firstTransaction": "2025-02-13",
        "lastTransaction": "2025-02-15", "uniqueCounterparties": 12,
        "contractInteractions": 67
      }},
      "heuristics": {"enabled": true, "score": 70, "flags": []},
      "chainabuse": {"enabled": false},
      "blocksec": {"enabled": false}
    },
    "disclaimer": "Automated screening. False positives and negatives are possible."
  },
  "compliance": {
    "kyc": {
      "status": "MANDATORY_EDD",
      "requirement": "Enhanced Due Diligence (EDD)",
      "actions": [
        "Request full documentation: ID + proof of address + source of funds",
        "Manual review by the Compliance Officer before proceeding"
      ],
      "documentsRequired": [
        {"name": "Identity document (ID card / passport)", "required": true},
        {"name": "Articles of incorporation (legal entities)", "required": false}
      ]
    },
    "amlKyt": {
      "status": "PARTIAL",
      "coveragePercent": 67,
      "activeProviders": ["OFAC/SDN (Sanctions)", "Blockchain Explorer (On-Chain)", "Behavioral Heuristics", "DeFi Protocol Analysis"],
      "inactiveProviders": ["Chainabuse (Scam Reports)", "Blocksec/MetaSleuth (Risk Score)"],
      "screeningType": "Automated Real-Time Screening",
      "frequency": "Per-transaction"
    },
    "regulatoryCooperation": {
      "status": "ENHANCED_MONITORING",
      "obligations": [
        {"regulation": "Law 9.613/1998", "action": "Keep records for at least 5 years", "deadline": "Ongoing", "priority": "ALTA"},
        {"regulation": "OFAC Compliance", "action": "Check SDN List (Tornado Cash sanctioned)", "deadline": "Before the operation", "priority": "CRÍTICA"},
        {"regulation": "Circular BACEN 3.978/2020", "action": "Keep the customer record up to date", "deadline": "Ongoing", "priority": "PADRÃO"}
      ],
      "jurisdictions": ["Brazil (BACEN/COAF)", "USA (OFAC/FinCEN)", "International (FATF/GAFI)"]
    },
    "onChainMonitoring": {
      "metrics": {
        "balance": "0.0001 ETH",
        "totalTransactions": 89,
        "tokenTransactions": 45,
        "stablecoinTransactions": 38,
        "firstActivity": "2025-02-13",
        "lastActivity": "2025-02-15",
        "uniqueCounterparties": 12
      },
      "continuousMonitoring": {"recommended": true, "frequency": "Daily (HIGH/CRITICAL)"}
    },
    "proofOfReserves": {
      "score": 5,
      "status": "UNTRACEABLE",
      "fundTraceability": "None - funds went through mixer(s). Origin untraceable.",
      "factors": [
        {"factor": "Mixer/tumbler usage", "impact": -50, "detail": "Traceability severely compromised."},
        {"factor": "Cross-chain bridge usage", "impact": -15, "detail": "Multi-chain tracing required."},
        {"factor": "Verified exchange origin", "impact": 0, "detail": "No effect."}
      ],
      "recommendation": "Require documentary proof of the origin of funds."
    },
    "auditTrail": {
      "entries": [
        {"timestamp": "2025-02-15T10:00:00Z", "action": "SCREENING_INITIATED", "detail": "Screening for ETHEREUM:0x742d35Cc...", "actor": "SYSTEM"},
        {"timestamp": "2025-02-15T10:00:04Z", "action": "RISK_CALCULATED", "detail": "Level=HIGH, Score=85, Rec=BLOCK", "actor": "SYSTEM"}
      ],
      "reportHash": "0000a3f2c91b8e74",
      "retentionPolicy": "Minimum 5 years (Law 9.613/1998)"
    }
  }
}`

// HighRisk decodes HighRiskJSON.
func HighRisk(t testing.TB) *model.Payload {
	t.Helper()
	p, err := model.Decode([]byte(HighRiskJSON))
	require.NoError(t, err)
	return p
}

// Report returns a minimal valid report with the given verdict.
func Report(level string, score float64, recommendation string, findings ...model.Finding) model.Report {
	return model.Report{
		ID:        ReportID,
		Timestamp: ReportStamp,
		Input:     model.Input{Chain: "ethereum", Address: Address},
		Decision: model.Decision{
			Level:          level,
			Score:          score,
			Recommendation: recommendation,
		},
		Findings: findings,
	}
}
