// Package qrcode renders QR codes with github.com/skip2/go-qrcode.
//
// The station uses it to print test cards (`scanstation testcard`), to feed
// the still-image camera with a synthetic frame, and in decoder tests to
// produce real symbols without fixture files.
//
//	png, err := qrcode.Generate("ATHLETE-0042", 512)
//	img, err := qrcode.Image("ATHLETE-0042", 512)
//	uri, err := qrcode.GenerateBase64Image("ATHLETE-0042", 256)
//
// Empty or whitespace-only content is rejected with ErrEmptyContent, the same
// rule the scanner applies to decoded payloads.
package qrcode
