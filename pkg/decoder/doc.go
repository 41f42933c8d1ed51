// Package decoder reads barcodes and QR codes from camera frames.
//
// A Reader decodes a single image with a fixed set of symbol formats and an
// optional region of interest. A Loop pulls frames from a camera.Stream at a
// fixed number of attempts per second and reports each outcome to Handlers
// from a single goroutine:
//
//	loop, err := decoder.New(cfg, decoder.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	err = loop.Start(ctx, stream, decoder.Handlers{
//		OnResult:  func(s decoder.Symbol) { fmt.Println(s.Text) },
//		OnMiss:    func() {},
//		OnFailure: func(err error) { log.Error("camera lost", "error", err) },
//	})
//	defer loop.Stop()
//
// Decoding is delegated to github.com/makiuchi-d/gozxing. Any decode error is
// a miss: frames without a symbol are the normal case, not a failure.
package decoder
