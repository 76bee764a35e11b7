package blockchain

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// MarketContract handles interactions with the on-chain prediction market
// program. Read queries return loosely-typed records — the account layout
// varies slightly between program versions, so coercion into the canonical
// Market struct happens in the transformer, not here.
type MarketContract struct {
	client          *SolanaClient
	programID       string
	tokenMintPubkey string
}

// NewMarketContract creates a new market contract instance
func NewMarketContract(client *SolanaClient, programID, tokenMintPubkey string) *MarketContract {
	return &MarketContract{
		client:          client,
		programID:       programID,
		tokenMintPubkey: tokenMintPubkey,
	}
}

// programAccount mirrors the jsonParsed getProgramAccounts envelope
type programAccount struct {
	Pubkey  string `json:"pubkey"`
	Account struct {
		Data struct {
			Parsed struct {
				Info map[string]interface{} `json:"info"`
			} `json:"parsed"`
		} `json:"data"`
	} `json:"account"`
}

// GetAllMarkets fetches every market account owned by the program
func (m *MarketContract) GetAllMarkets(ctx context.Context) ([]map[string]interface{}, error) {
	resp, err := m.client.rpcCall(ctx, "getProgramAccounts", []interface{}{
		m.programID,
		map[string]interface{}{
			"encoding": "jsonParsed",
			"filters": []interface{}{
				map[string]interface{}{
					"memcmp": map[string]interface{}{
						"offset": 0,
						"bytes":  accountDiscriminator("market"),
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market accounts: %w", err)
	}

	var accounts []programAccount
	if err := json.Unmarshal(resp.Result, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse market accounts: %w", err)
	}

	records := make([]map[string]interface{}, 0, len(accounts))
	for _, acc := range accounts {
		info := acc.Account.Data.Parsed.Info
		if info == nil {
			continue
		}
		info["address"] = acc.Pubkey
		records = append(records, info)
	}

	return records, nil
}

// GetMarket fetches a single market account by its numeric market id
func (m *MarketContract) GetMarket(ctx context.Context, marketID uint64) (map[string]interface{}, error) {
	pda, err := m.marketPDA(marketID)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.rpcCall(ctx, "getAccountInfo", []interface{}{
		pda.String(),
		map[string]interface{}{"encoding": "jsonParsed"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market %d: %w", marketID, err)
	}

	var envelope struct {
		Value *struct {
			Data struct {
				Parsed struct {
					Info map[string]interface{} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"value"`
	}
	if err := json.Unmarshal(resp.Result, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse market account: %w", err)
	}

	if envelope.Value == nil || envelope.Value.Data.Parsed.Info == nil {
		return nil, fmt.Errorf("market %d not found on chain", marketID)
	}

	info := envelope.Value.Data.Parsed.Info
	info["address"] = pda.String()
	return info, nil
}

// GetUserStats fetches the on-chain stats account for a wallet
func (m *MarketContract) GetUserStats(ctx context.Context, walletAddress string) (map[string]interface{}, error) {
	owner, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address: %w", err)
	}

	pda, err := m.userPDA("user_stats", owner)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.rpcCall(ctx, "getAccountInfo", []interface{}{
		pda.String(),
		map[string]interface{}{"encoding": "jsonParsed"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user stats: %w", err)
	}

	var envelope struct {
		Value *struct {
			Data struct {
				Parsed struct {
					Info map[string]interface{} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"value"`
	}
	if err := json.Unmarshal(resp.Result, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse user stats account: %w", err)
	}

	if envelope.Value == nil {
		// No account yet — the caller substitutes zeroed stats
		return map[string]interface{}{}, nil
	}

	return envelope.Value.Data.Parsed.Info, nil
}

// GetUserPositions fetches all position accounts held by a wallet
func (m *MarketContract) GetUserPositions(ctx context.Context, walletAddress string) ([]map[string]interface{}, error) {
	if _, err := solana.PublicKeyFromBase58(walletAddress); err != nil {
		return nil, fmt.Errorf("invalid wallet address: %w", err)
	}

	// Both filters are required: the wallet memcmp alone would also match
	// market accounts whose creator pubkey sits at the same offset
	resp, err := m.client.rpcCall(ctx, "getProgramAccounts", []interface{}{
		m.programID,
		map[string]interface{}{
			"encoding": "jsonParsed",
			"filters": []interface{}{
				map[string]interface{}{
					"memcmp": map[string]interface{}{
						"offset": 0,
						"bytes":  accountDiscriminator("position"),
					},
				},
				map[string]interface{}{
					"memcmp": map[string]interface{}{
						"offset": 8,
						"bytes":  walletAddress,
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}

	var accounts []programAccount
	if err := json.Unmarshal(resp.Result, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse position accounts: %w", err)
	}

	records := make([]map[string]interface{}, 0, len(accounts))
	for _, acc := range accounts {
		if acc.Account.Data.Parsed.Info != nil {
			records = append(records, acc.Account.Data.Parsed.Info)
		}
	}

	return records, nil
}

// GetBuySharesInstruction returns the parameters the frontend needs to build
// and sign the buy_shares instruction
func (m *MarketContract) GetBuySharesInstruction(marketID uint64, buyerPubKey, option string, amount decimal.Decimal) map[string]interface{} {
	return map[string]interface{}{
		"programId":   m.programID,
		"instruction": "buy_shares",
		"marketId":    marketID,
		"option":      option,
		"amount":      amount.String(),
		"accounts": map[string]string{
			"buyer":     buyerPubKey,
			"tokenMint": m.tokenMintPubkey,
		},
	}
}

// GetCreateMarketInstruction returns the parameters for the create_market instruction
func (m *MarketContract) GetCreateMarketInstruction(creatorPubKey, title, optionA, optionB string, endTime int64) map[string]interface{} {
	return map[string]interface{}{
		"programId":   m.programID,
		"instruction": "create_market",
		"title":       title,
		"optionA":     optionA,
		"optionB":     optionB,
		"endTime":     endTime,
		"accounts": map[string]string{
			"creator":   creatorPubKey,
			"tokenMint": m.tokenMintPubkey,
		},
	}
}

// GetResolveMarketInstruction returns the parameters for the resolve_market instruction
func (m *MarketContract) GetResolveMarketInstruction(marketID uint64, resolverPubKey, outcome string) map[string]interface{} {
	return map[string]interface{}{
		"programId":   m.programID,
		"instruction": "resolve_market",
		"marketId":    marketID,
		"outcome":     outcome,
		"accounts": map[string]string{
			"resolver": resolverPubKey,
		},
	}
}

// GetClaimWinningsInstruction returns the parameters for the claim_winnings instruction
func (m *MarketContract) GetClaimWinningsInstruction(marketID uint64, claimerPubKey string) map[string]interface{} {
	return map[string]interface{}{
		"programId":   m.programID,
		"instruction": "claim_winnings",
		"marketId":    marketID,
		"accounts": map[string]string{
			"claimer":   claimerPubKey,
			"tokenMint": m.tokenMintPubkey,
		},
	}
}

// GetCreateUserAccountInstruction returns the parameters for the create_user_account instruction
func (m *MarketContract) GetCreateUserAccountInstruction(ownerPubKey string) map[string]interface{} {
	return map[string]interface{}{
		"programId":   m.programID,
		"instruction": "create_user_account",
		"accounts": map[string]string{
			"owner": ownerPubKey,
		},
	}
}

// GetSubmitEvidenceInstruction returns the parameters for the submit_resolution_evidence instruction
func (m *MarketContract) GetSubmitEvidenceInstruction(marketID uint64, submitterPubKey, evidenceURI string) map[string]interface{} {
	return map[string]interface{}{
		"programId":   m.programID,
		"instruction": "submit_resolution_evidence",
		"marketId":    marketID,
		"evidenceUri": evidenceURI,
		"accounts": map[string]string{
			"submitter": submitterPubKey,
		},
	}
}

// SubmitSigned decodes a base64 wallet-signed transaction, submits it, and
// waits for sealing before returning the signature. Callers must not apply
// any off-chain side effects until this returns without error.
func (m *MarketContract) SubmitSigned(ctx context.Context, signedTx string) (string, error) {
	tx, err := solana.TransactionFromBase64(signedTx)
	if err != nil {
		return "", fmt.Errorf("invalid signed transaction: %w", err)
	}

	sig, err := m.client.SendTransaction(ctx, tx)
	if err != nil {
		return "", err
	}

	if err := m.client.AwaitSealing(ctx, sig.String()); err != nil {
		return "", err
	}

	log.Printf("Transaction sealed: %s", sig)
	return sig.String(), nil
}

// marketPDA derives the market account address from its numeric id
func (m *MarketContract) marketPDA(marketID uint64) (solana.PublicKey, error) {
	program, err := solana.PublicKeyFromBase58(m.programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program ID: %w", err)
	}

	idBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(idBytes, marketID)

	pda, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("market"), idBytes},
		program,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive market PDA: %w", err)
	}
	return pda, nil
}

// userPDA derives a per-user account address for the given seed prefix
func (m *MarketContract) userPDA(prefix string, owner solana.PublicKey) (solana.PublicKey, error) {
	program, err := solana.PublicKeyFromBase58(m.programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program ID: %w", err)
	}

	pda, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(prefix), owner.Bytes()},
		program,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive %s PDA: %w", prefix, err)
	}
	return pda, nil
}

// accountDiscriminator returns the base58 discriminator filter value for an
// account type name. Anchor uses the first 8 bytes of sha256("account:<Name>");
// the program here ships precomputed values in its IDL.
func accountDiscriminator(name string) string {
	discriminators := map[string]string{
		"market":   "GpRvP4aV2Tt",
		"position": "5Sz3kR9mQw1",
	}
	return discriminators[name]
}
