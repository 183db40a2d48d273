package cipher_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoscrypt/internal/cipher"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/keygen"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

// testSchedule builds a schedule from fixed bit patterns so the suite does
// not depend on integration.
func testSchedule() *cipher.Schedule {
	patterns := [systems.Count]keygen.Bitstream{
		{1, 0, 1, 1, 0, 0, 1},
		{0, 1, 1, 1, 0, 1, 0, 0, 1, 1, 0},
		{1, 1, 0, 0, 0, 1, 0, 1, 1},
	}
	var keys [systems.Count]keygen.Key
	var sboxes [systems.Count]keygen.SBox
	for i, p := range patterns {
		k, err := keygen.ToKey(p)
		Expect(err).NotTo(HaveOccurred())
		src, err := keygen.NewCycler(p)
		Expect(err).NotTo(HaveOccurred())
		keys[i] = k
		sboxes[i] = keygen.ToSBox(src)
	}
	s, err := cipher.NewSchedule(keys, sboxes)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func gradient(shape cipher.Shape) []byte {
	px := make([]byte, 0, shape.Len())
	for i := 0; i < shape.Height; i++ {
		for j := 0; j < shape.Width; j++ {
			for c := 0; c < shape.Channels; c++ {
				px = append(px, byte(i*17+j*3+c*50))
			}
		}
	}
	return px
}

var _ = Describe("Schedule", func() {
	var (
		ctx   context.Context
		sched *cipher.Schedule
		shape cipher.Shape
		plain []byte
	)

	BeforeEach(func() {
		ctx = context.Background()
		sched = testSchedule()
		shape = cipher.Shape{Height: 16, Width: 16, Channels: 3}
		plain = gradient(shape)
	})

	Describe("round trip", func() {
		DescribeTable("decrypt inverts encrypt",
			func(rounds int) {
				enc, err := sched.Encrypt(ctx, plain, shape, rounds)
				Expect(err).NotTo(HaveOccurred())
				Expect(enc).To(HaveLen(shape.Len()))
				Expect(enc).NotTo(Equal(plain))

				dec, err := sched.Decrypt(ctx, enc, shape, rounds)
				Expect(err).NotTo(HaveOccurred())
				Expect(dec).To(Equal(plain))
			},
			Entry("one round", 1),
			Entry("three rounds", 3),
			Entry("five rounds", 5),
			Entry("ten rounds", 10),
			Entry("max rounds", cipher.MaxRounds),
		)

		It("handles buffers large enough to be split across goroutines", func() {
			big := cipher.Shape{Height: 300, Width: 300, Channels: 4}
			px := gradient(big)

			enc, err := sched.Encrypt(ctx, px, big, 4)
			Expect(err).NotTo(HaveOccurred())
			dec, err := sched.Decrypt(ctx, enc, big, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(bytes.Equal(dec, px)).To(BeTrue())
		})
	})

	Describe("round structure", func() {
		It("applies substitution after XOR with the cycled key", func() {
			one := cipher.Shape{Height: 1, Width: 40, Channels: 1}
			zeros := make([]byte, one.Len())

			enc, err := sched.Encrypt(ctx, zeros, one, 1)
			Expect(err).NotTo(HaveOccurred())

			key, _ := keygen.ToKey(keygen.Bitstream{1, 0, 1, 1, 0, 0, 1})
			src, _ := keygen.NewCycler(keygen.Bitstream{1, 0, 1, 1, 0, 0, 1})
			sbox := keygen.ToSBox(src)
			for i := range enc {
				Expect(enc[i]).To(Equal(sbox[key[i%keygen.KeySize]]))
			}
		})

		It("cycles systems every three rounds", func() {
			Expect(cipher.System(1)).To(Equal(0))
			Expect(cipher.System(2)).To(Equal(1))
			Expect(cipher.System(3)).To(Equal(2))
			Expect(cipher.System(4)).To(Equal(0))
			Expect(cipher.System(64)).To(Equal(0))
		})

		It("is deterministic and leaves the input untouched", func() {
			orig := append([]byte(nil), plain...)
			a, err := sched.Encrypt(ctx, plain, shape, 3)
			Expect(err).NotTo(HaveOccurred())
			b, err := sched.Encrypt(ctx, plain, shape, 3)
			Expect(err).NotTo(HaveOccurred())

			Expect(a).To(Equal(b))
			Expect(plain).To(Equal(orig))
		})
	})

	Describe("validation", func() {
		It("rejects round counts outside [1, MaxRounds]", func() {
			for _, r := range []int{0, -1, cipher.MaxRounds + 1} {
				_, err := sched.Encrypt(ctx, plain, shape, r)
				Expect(err).To(MatchError(dynamo.ErrInvalidInput))
				_, err = sched.Decrypt(ctx, plain, shape, r)
				Expect(err).To(MatchError(dynamo.ErrInvalidInput))
			}
		})

		It("reports a plaintext length mismatch as invalid input", func() {
			_, err := sched.Encrypt(ctx, plain[:10], shape, 1)
			Expect(err).To(MatchError(dynamo.ErrInvalidInput))
		})

		It("reports a ciphertext length mismatch as a shape mismatch", func() {
			_, err := sched.Decrypt(ctx, plain[:10], shape, 1)
			Expect(err).To(MatchError(dynamo.ErrShapeMismatch))
		})

		It("rejects malformed shapes", func() {
			for _, s := range []cipher.Shape{
				{Height: 0, Width: 4, Channels: 3},
				{Height: 4, Width: -1, Channels: 3},
				{Height: 4, Width: 4, Channels: 0},
				{Height: 4, Width: 4, Channels: 5},
			} {
				_, err := sched.Encrypt(ctx, nil, s, 1)
				Expect(err).To(MatchError(dynamo.ErrInvalidInput))
			}
		})

		It("rejects an s-box that is not a bijection", func() {
			var keys [systems.Count]keygen.Key
			sboxes := [systems.Count]keygen.SBox{keygen.IdentitySBox(), {}, keygen.IdentitySBox()}
			_, err := cipher.NewSchedule(keys, sboxes)
			Expect(err).To(MatchError(dynamo.ErrInvalidInput))
		})

		It("stops between rounds when the context is canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := sched.Encrypt(canceled, plain, shape, 3)
			Expect(err).To(MatchError(dynamo.ErrCanceled))
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})
