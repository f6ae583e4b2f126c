package crypto

import "testing"

func TestEncryptDecrypt(t *testing.T) {
	c := NewCipher("master password")
	sealed, err := c.Encrypt("key passphrase")
	if err != nil {
		t.Fatal(err)
	}
	again, err := c.Encrypt("key passphrase")
	if err != nil {
		t.Fatal(err)
	}
	if sealed == again {
		t.Error("two encryptions share a nonce")
	}
	plain, err := c.Decrypt(sealed)
	if err != nil || plain != "key passphrase" {
		t.Errorf("Decrypt() = %q, %v", plain, err)
	}
}

func TestDecryptRejects(t *testing.T) {
	sealed, err := NewCipher("a").Encrypt("x")
	if err != nil {
		t.Fatal(err)
	}
	for name, input := range map[string]string{
		"wrong key": sealed,
		"not hex":   "zz",
		"too short": "00",
	} {
		if _, err := NewCipher("b").Decrypt(input); err == nil {
			t.Errorf("%s: Decrypt() succeeded", name)
		}
	}
}
