package ryu

import "math/big"

const (
	pow5InvBitCount  = 125
	pow5BitCount     = 125
	pow5InvTableSize = 342
	pow5TableSize    = 326
)

// Each entry is a 128-bit value stored as {low, high}.
var (
	pow5InvSplit [pow5InvTableSize][2]uint64
	pow5Split    [pow5TableSize][2]uint64
)

func init() {
	one := big.NewInt(1)
	five := big.NewInt(5)
	pow := big.NewInt(1)

	for i := 0; i < pow5InvTableSize; i++ {
		bitLen := pow.BitLen()

		if i < pow5TableSize {
			v := new(big.Int)
			if shift := bitLen - pow5BitCount; shift > 0 {
				v.Rsh(pow, uint(shift))
			} else {
				v.Lsh(pow, uint(-shift))
			}
			pow5Split[i] = split128(v)
		}

		// floor(2^(bitlen(5^i)-1+125) / 5^i) + 1
		inv := new(big.Int).Lsh(one, uint(bitLen-1+pow5InvBitCount))
		inv.Quo(inv, pow)
		inv.Add(inv, one)
		pow5InvSplit[i] = split128(inv)

		pow.Mul(pow, five)
	}
}

func split128(v *big.Int) [2]uint64 {
	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(v, 64)
	return [2]uint64{lo.Uint64(), hi.Uint64()}
}
