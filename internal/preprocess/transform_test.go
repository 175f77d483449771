package preprocess

import (
	"encoding/hex"
	"image"
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// noisyGradient is a 32x32 color gradient with deterministic per-pixel noise.
// At this size each CLAHE tile is 4x4, so the clip limit and tile grid both
// change the result.
func noisyGradient() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x*6 + y*2 + (x*31+y*17+x*y*13)%23) % 256),
				G: uint8((y*7 + (x*y*5+11)%29) % 256),
				B: uint8(200 - x*3 - y*2),
				A: 255,
			})
		}
	}
	return img
}

func hexPixels(s string) []byte {
	b, err := hex.DecodeString(s)
	Expect(err).NotTo(HaveOccurred())
	Expect(b).To(HaveLen(32 * 32))
	return b
}

// Rows of noisyGradient after Transform with contrast 1.25, brightness -12, blur 2
const tunedGolden = "" +
	"20304034383c50585858504c505870685844505c6058504c4844404450505060" +
	"40405054585c6064686860586068807b686060687068605c5864706c60647080" +
	"70808f8f98979f9798988f97a09f9f9b909b9f979088808b989b9f9ba09f9f9f" +
	"878793999da2aba29b949f9e9b999b9b95979b938d9293999fa2aba8a19f9fab" +
	"7880888c9094989490929092908c888684888886848888889496989c94929098" +
	"70707c848e959c978d96989d918f8c89868c8c8b898688878b9b9c9a999698a3" +
	"80808f939fabafabafafafbbb7afafafafb3afaba09f9f9fa7afafbfb7bbbfbf" +
	"87939f9f9fa4ababa3a8abb1b1b2b7bab5b5b7b4adaaaba8a5b1b7bcb7b9bfcb" +
	"8088888a8c9498949498989ea0a0a0a4a8a2a09e9c989896949ea0aaa8acb0b0" +
	"748090909593908d8f999c9997a2a09c999794969797908e91a2a0a2a5a6abb7" +
	"8f9fafabafb3afafb7b7bfb7a8a7afb7b0a39fa3a7abafaba8b3afc3c7cbbfbf" +
	"97a3afaaafafb7bab7b1b7a5999eafababa9abbdb5b4b7b3abb0b3b8b5b6afaf" +
	"90909892949aa0a09898908e8c96989494a9a8a6a4a2a09c9c9898989c989898" +
	"8484908b8096a09b978884847e8da09c99a3a09c9fa3a09c939494959d9a9c9c" +
	"8f9f9f9b90abbfb7b0a39fafafafafa7b0b7bfb7b7b3afbbb7afafafb7afafbf" +
	"93939f9f99adbbbeb9b8bbb9b3b0b3afa7b6bbb8b3b8bbbeb9b7bbbfbdc2cbcb" +
	"8080888a8ca4a8aea8a8a8a49c9a98989ca4a8a4a4a9a8a8a8a0a0a8b4bcc0c0" +
	"84849091979ca0a89fa0a09c9f979497999aa09c9fa3a0ababa0a0a8ababb7b7" +
	"8f9fafafafafafabc7bfbfb7b7b3afafa7abafaba8bfbfbfbfafafb7b7b3bfbf" +
	"a3afbbb8b9b7bbbdb7b5b7b9b3b0b3b2adabafbab9b6b7bab3b3b7bcbbc1bfbf" +
	"98a0a8a6a8a6a8a2a8a2a0a49c9c98989ca4a8aaa8a3a0a0a0a0a0a8a8b0b0b0" +
	"8894a09f9f9da09999a3a0a59f9d949799a9aba89fa0a09f9fa0a0adb5bab3b3" +
	"8f9fafafaf9f9f9bb7c3bfc7bfb3afb3b7bfbfbfb7b7bfbfb7bbbfcfc7cbcfbf" +
	"9ba7b3b1a9a8abb4b5b4b7b9b9bbbfc0b9b7b7b9b7b9bfc8c9ced7d3c9c8bbbb" +
	"9898a0a6a0a0a09ca0a2a0a8acaeb0a8aba5a09aa0acb0bcbfc1c0bfb8aaa8a8" +
	"9494a09f9f9da09999a3a0a2a5a9aba29f9a9497949dabbabdd2cfc8bbb7b3a7" +
	"9f9fafafafafafb7b7b3afbfbfbfbfbbb7b3afafa7afbfd7dfe3dfe3d7c79f8f" +
	"a7b3bfbdbbc0c7c3bfc3c7cac9c6c7cdcdcacbc8c9c8cbd7dbe6e7eadbc57b54" +
	"b0b8bfb9bbbdc0bfbfbfc7c7c7c5cfd1d3cdc7c3c7cbc7d5dbd9dfdddbbf7848" +
	"b3b3c3b9bdbdc3c2c3c9cfd2cfd2dbded5d2cfd5d5d2dbe4e1eae7e4d5bb9054" +
	"afbfcfc3bfbfbfbfcfcfdfe7d7cfdfe3d7cfdfe3cfcfdfebf7f3eff3d7b38f60" +
	"bfbfdfd3c7bfcfcfcfdbefe7d7dbefe3d7dbefe3d7dbeffbf7fffff3e7b38f70"

// Rows of noisyGradient after Transform with the default config
const defaultGolden = "" +
	"20304044382c304048544040485450484038404c404040505050503438405060" +
	"405060605040404c6064605c58686064584c5060585c60606070706050507080" +
	"80808f8b88848f8b90948f8788909f9b98848083908c8f9fa09f9f8f889bafbf" +
	"87939fa59f9d93908f8e93a3a19fa39d9796979a959ca7a59f9da3a2a3a6abbb" +
	"78889094908c88807c8c9098a098908c8c8c90928c94989ca09b989694989898" +
	"74808c9395959489847c8ca09d8f80797e86948989979c949999a395938f9090" +
	"808f9f9ba0a3afafa09fafb3a88c808fa7afafa39fa7af9ba0afafaba09f9faf" +
	"97a3af9f959a9fa3a1a0b3afa3918b969ba1939b9fa7b3a69facb7b8adabafbf" +
	"88888888888c908e949ea09e988880808888888e9c9c989294a0a89e9c9ea0a8" +
	"7480808386898c8d93a4a7958f8a848291909494a191807b8e959c9e95999ca7" +
	"70808f9fa7abafb3b7b7bfa798949fafb7b7bfb3b098808390abafb3b7ab9faf" +
	"7f8b9b9da9b1bfc1b7ada3948b93a7b2b5bcbbb5a59c979b9b9fa7aba5a6abab" +
	"888890909ca3a8a0948e807e848e989aa4a5a8a29c96908e8c8a9896949698a0" +
	"88889490878b948c848880828692988b8995a0a59f979fa08f888c8d93989ca7" +
	"9f9faf8780949fa3989b9fa39fa7af9798a3bfbba89fafbfaf9f9f9fb7bbbfcf" +
	"939f9f908799a3a99f9fa3a9a3a7afaca5abb3b6a9a6b3b9b1a6a7a9afb3bfcf" +
	"78808880808e989e9898989c989498969898a0a6a4a7a8a8a498989898a2a8b8" +
	"707c8886838b98a09d9898989b9c9ca1908a9c9ba1a2a7b2ab998c919095a0ab" +
	"8f9fafabb7afafafb7b7afafafb3afb7af97afa7b0afbfbbaf9f8fa3a7afafbf" +
	"a7b3bfbcbbb1b3b9bdbcb3afadacafb3abadb3b9b3b1b3b3a7a5a7a9a3abafbf" +
	"a0a0a8b0aca6a8a6acaba8a6a0a0a0a09c9ea8acaba1989494929090a09ea0a8" +
	"8894aba89f9da0a7a9aca7a7ada89c9b9ba2a7a49b90908d95909093a1a8abab" +
	"809fafb3a79bafabafafafbfbfbfafb3b7c3bfafa7abafabafabafb3b7bbbfbf" +
	"8f9ba7ada7a1a7a6a5a9afafb3b6bfbdbfc0c7abadabafb6b5b8bfc3bbbfc7d3" +
	"9098a0a0a098909090a0a09e9ca4a8a6b0bbb8a0989da0aaafafb0a8b0b6c0c7" +
	"98a3a3a0ada89c98a19f9c9c919ca0a4b5bab39e8f939ca5afb1a0aeb1bdcfcf" +
	"afafbfbbbfbbbfbbafafafbfafbbbfc3bfc7bfaba09fafb7b7b7afc3d7cbaf8f" +
	"ababb7b8afadafb6afb9c3c2bdbcc3c2bdbbb3b4b1bcc3c0b3b6c7d9dbb76848" +
	"a0a0a8a2a3a1a0a0a4b1b0acacb1b0b0a8a6a8a8b3b5b8b8b0b5b8cbcbb36048" +
	"9ca7b3ada7aba7aeafb1aba8a5a6abb0a9abb3b1bbb9b7b7b7c0c3c8cdc09f70" +
	"bfcfdfcfbfbbcfd7d7cfbfb7b8b3bfc7bfcbdfdfcfcbcfcfd7e7dfe3e7d7af80" +
	"dfdfefe3d7cbdfe7e7f3dfc3c7bfeff3e7e7eff3e7dbdfe3efffffefffebaf70"

var _ = Describe("Transform", func() {
	It("should match the reference output for a tuned config", func() {
		out := Transform(noisyGradient(), Config{Contrast: 1.25, Brightness: -12, BlurRadius: 2})
		Expect(out.Bounds()).To(Equal(image.Rect(0, 0, 32, 32)))
		Expect(out.Pix).To(Equal(hexPixels(tunedGolden)))
	})

	It("should match the reference output for the default config", func() {
		out := Transform(noisyGradient(), DefaultConfig())
		Expect(out.Pix).To(Equal(hexPixels(defaultGolden)))
	})

	It("should equal the explicit stage sequence", func() {
		cfg := Config{Contrast: 1.25, Brightness: -12, BlurRadius: 2}
		stages := CLAHE(Denoise(Luminance(GaussianBlur(ScaleOffset(noisyGradient(), cfg.Contrast, cfg.Brightness), cfg.BlurRadius))), 1.0, 8, 8)
		Expect(Transform(noisyGradient(), cfg).Pix).To(Equal(stages.Pix))
	})

	It("should use the fixed chain constants", func() {
		Expect(DenoiseKernelSize).To(Equal(5))
		Expect(ClipLimit).To(Equal(1.0))
		Expect(TileGrid).To(Equal(8))
	})

	Describe("stage 1 clamping", func() {
		It("should clamp each channel before the luminance conversion", func() {
			src := uniformNRGBA(1, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
			// Unclamped channels (400, 200, 100) would give 248
			Expect(Luminance(ScaleOffset(src, 2.0, 0)).GrayAt(0, 0).Y).To(Equal(uint8(205)))
		})

		It("should make an over-driven image identical to its clamped equivalent", func() {
			overDriven := Transform(uniformNRGBA(16, 16, color.NRGBA{R: 200, G: 100, B: 50, A: 255}), Config{Contrast: 2.0})
			clamped := Transform(uniformNRGBA(16, 16, color.NRGBA{R: 255, G: 200, B: 100, A: 255}), DefaultConfig())
			Expect(overDriven.Pix).To(Equal(clamped.Pix))
		})
	})
})
