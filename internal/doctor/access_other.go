//go:build !unix

package doctor

func checkReadWrite(string) error {
	return nil
}
