package persist

func RegisterAccount(wallet string, pubKey []byte) Mutation {
	return newMutation(RegisterAccountParams{Wallet: wallet, PubKey: append([]byte(nil), pubKey...)})
}

// AccountNonce consumes nonce for wallet.
func AccountNonce(wallet string, nonce uint64) Mutation {
	return newMutation(AccountNonceParams{Wallet: wallet, Nonce: nonce})
}
