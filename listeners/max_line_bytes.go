package listeners

import "github.com/reusee/bridges/configs"

// MaxLineBytes bounds one line, excluding the line terminator.
type MaxLineBytes int

const DefaultMaxLineBytes = 64 * 1024

func (Module) MaxLineBytes(
	loader configs.Loader,
) MaxLineBytes {
	if n := configs.First[int](loader, "max_line_bytes"); n > 0 {
		return MaxLineBytes(n)
	}
	return DefaultMaxLineBytes
}
