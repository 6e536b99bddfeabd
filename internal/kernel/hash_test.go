package kernel

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/epmcoin/stakekernel/internal/chainindex"
	"github.com/epmcoin/stakekernel/internal/consensus"
)

func p2pkhScript(t *testing.T, b byte) []byte {
	t.Helper()
	var hash [20]byte
	hash[0] = b
	addr, err := btcutil.NewAddressPubKeyHash(hash[:], &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("NewAddressPubKeyHash: %v", err)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		t.Fatalf("PayToAddrScript: %v", err)
	}
	return script
}

func TestCheckKernelScript(t *testing.T) {
	keyA := p2pkhScript(t, 1)
	keyB := p2pkhScript(t, 2)

	tests := []struct {
		name string
		vin  []byte
		vout []byte
		want bool
	}{
		{name: "matching P2PKH keys", vin: keyA, vout: keyA, want: true},
		{name: "different P2PKH keys", vin: keyA, vout: keyB, want: false},
		{
			name: "unrecognized scripts on both sides are accepted",
			vin:  []byte{txscript.OP_RETURN},
			vout: []byte{txscript.OP_RETURN, 0x01, 0x02},
			want: true,
		},
		{
			name: "one unrecognized, one recognized is rejected",
			vin:  []byte{txscript.OP_RETURN},
			vout: keyA,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckKernelScript(tt.vin, tt.vout); got != tt.want {
				t.Fatalf("CheckKernelScript() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckStakeKernelHash_RejectsBelowMinimumValue(t *testing.T) {
	params := &consensus.Params{
		StakeMinAge:       3600,
		StakeMaxAge:       86400,
		MinimumStakeValue: 10000 * 1e8,
		CoinUnit:          1e8,
		ModifierInterval:  6 * 3600,
	}
	blockFrom := &chainindex.BlockIndexEntry{Height: 10, BlockTime: 1000, Flags: chainindex.FlagGeneratedStakeModifier}
	ctx := &consensus.Context{Params: params, Chain: chainindex.New()}

	_, err := CheckStakeKernelHash(ctx, 0x1d00ffff, blockFrom, StakeInput{
		BlockFrom:  blockFrom,
		Value:      1000 * 1e8, // below MinimumStakeValue
		TxPrevTime: 1000,
	}, 1000+int64(params.StakeMinAge)+1)
	if err == nil {
		t.Fatal("expected an error for a stake input below the minimum value")
	}
}

func TestCheckStakeKernelHash_RejectsBelowMinimumAge(t *testing.T) {
	params := &consensus.Params{
		StakeMinAge:       3600,
		StakeMaxAge:       86400,
		MinimumStakeValue: 1,
		CoinUnit:          1e8,
		ModifierInterval:  6 * 3600,
	}
	blockFrom := &chainindex.BlockIndexEntry{Height: 10, BlockTime: 1000, Flags: chainindex.FlagGeneratedStakeModifier}
	ctx := &consensus.Context{Params: params, Chain: chainindex.New()}

	_, err := CheckStakeKernelHash(ctx, 0x1d00ffff, blockFrom, StakeInput{
		BlockFrom:  blockFrom,
		Value:      1000 * 1e8,
		TxPrevTime: 1000,
	}, 1000+100) // well short of StakeMinAge
	if err == nil {
		t.Fatal("expected an error for a stake input below the minimum age")
	}
}

func TestCheckStakeKernelHash_RejectsTimestampViolation(t *testing.T) {
	params := &consensus.Params{StakeMinAge: 3600, StakeMaxAge: 86400, CoinUnit: 1e8, ModifierInterval: 6 * 3600}
	blockFrom := &chainindex.BlockIndexEntry{Height: 10, BlockTime: 1000}
	ctx := &consensus.Context{Params: params, Chain: chainindex.New()}

	_, err := CheckStakeKernelHash(ctx, 0x1d00ffff, blockFrom, StakeInput{
		BlockFrom:  blockFrom,
		Value:      1,
		TxPrevTime: 1000,
	}, 999) // before blockFrom's own time
	if err == nil {
		t.Fatal("expected an error when the transaction time precedes its input's block")
	}
}
