package garden

import "math/big"

// CompareSnowflakes orders two snowflake-style message IDs numerically.
// Snowflakes exceed 53-bit float precision, so comparison goes through
// math/big rather than any float conversion. An empty or malformed ID is
// treated as zero, which makes an absent watermark sort below every real
// message ID. Returns -1, 0, or 1.
func CompareSnowflakes(a, b string) int {
	return parseSnowflake(a).Cmp(parseSnowflake(b))
}

func parseSnowflake(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return n
}
