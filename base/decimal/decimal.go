package decimal

// MaxLen is the number of digits in the largest uint64.
const MaxLen = 20

// AppendUint appends the decimal digits of x to b, most significant first.
// Zero is written as a single '0'.
func AppendUint(b []byte, x uint64) []byte {
	var buf [MaxLen]byte
	n := 0
	for {
		buf[n] = '0' + byte(x%10)
		n++
		x /= 10
		if x == 0 {
			break
		}
	}
	for n != 0 {
		n--
		b = append(b, buf[n])
	}
	return b
}
