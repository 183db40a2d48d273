package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/chaoscrypt/internal/analysis"
	"github.com/san-kum/chaoscrypt/internal/imagestats"
	"github.com/san-kum/chaoscrypt/internal/keygen"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

func (s Styles) table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Label).
		Headers(headers...)
}

// RenderMaterial summarizes derived keys and S-boxes.
func (s Styles) RenderMaterial(m *keygen.Material) string {
	t := s.table("SYSTEM", "BITS", "ONES", "KEY", "SBOX FIXED")
	for _, kind := range systems.Kinds {
		bits := m.Bitstreams[kind]
		t.Row(
			kind.Label(),
			fmt.Sprint(len(bits)),
			fmt.Sprintf("%.3f", float64(bits.Ones())/float64(max(len(bits), 1))),
			m.Keys[kind].String(),
			fmt.Sprint(m.SBoxes[kind].FixedPoints()),
		)
	}
	return s.Title.Render("key material") + "\n" +
		t.String() + "\n" +
		s.KeyValue("fingerprint", m.FingerprintHex())
}

func (s Styles) RenderSpecs(specs [systems.Count]systems.Spec) string {
	t := s.table("SYSTEM", "PARAMETERS", "INITIAL STATE")
	for _, spec := range specs {
		info := spec.Info()
		params := make([]string, 0, len(info.Parameters))
		for _, name := range spec.Kind().ParamNames() {
			params = append(params, fmt.Sprintf("%s=%.6g", name, info.Parameters[name]))
		}
		ic := make([]string, len(info.InitialConditions))
		for i, v := range info.InitialConditions {
			ic[i] = fmt.Sprintf("%.6g", v)
		}
		t.Row(info.Label, strings.Join(params, " "), strings.Join(ic, " "))
	}
	return t.String()
}

// RenderSpectra tabulates Lyapunov spectra with a hyperchaos verdict.
func (s Styles) RenderSpectra(spectra []analysis.Spectrum) string {
	t := s.table("SYSTEM", "λ1", "λ2", "λ3", "λ4", "SUM", "D_KY", "VERDICT")
	for _, sp := range spectra {
		row := []string{sp.System}
		for _, v := range sp.Sorted {
			row = append(row, fmt.Sprintf("%+.4f", v))
		}
		row = append(row,
			fmt.Sprintf("%+.3f", sp.Sum()),
			fmt.Sprintf("%.3f", sp.KaplanYorke()),
			s.Verdict(sp.Hyperchaotic, "hyperchaotic", fmt.Sprintf("%d positive", sp.Positive)),
		)
		t.Row(row...)
	}
	return t.String()
}

func (s Styles) RenderBitQuality(system string, q analysis.BitQuality) string {
	var b strings.Builder
	b.WriteString(s.Header.Render(system) + "\n")
	b.WriteString(s.KeyValue("balance", fmt.Sprintf("%.4f", q.Balance)) + "  ")
	b.WriteString(s.KeyValue("runs", fmt.Sprintf("%d (max %d, mean %.2f)", q.Runs, q.MaxRun, q.MeanRun)) + "\n")
	b.WriteString(s.KeyValue("bit entropy", fmt.Sprintf("%.4f", q.BitEntropy)) + "  ")
	b.WriteString(s.KeyValue("byte entropy", fmt.Sprintf("%.4f", q.ByteEntropy)) + "\n")
	b.WriteString(s.KeyValue("dft peaks", fmt.Sprintf("%.4f", q.SpectralPeaks)) + "  ")
	b.WriteString(s.Verdict(q.SpectralPValue >= 0.01, fmt.Sprintf("p=%.3f", q.SpectralPValue), fmt.Sprintf("p=%.3g periodic", q.SpectralPValue)) + "\n")
	if len(q.Autocorrelation) > 0 {
		b.WriteString(s.Label.Render("autocorrelation ") + Sparkline(q.Autocorrelation, len(q.Autocorrelation)) + "\n")
	}
	return b.String()
}

// RenderReport lays out the statistical comparison of plain and cipher images.
func (s Styles) RenderReport(r *imagestats.Report) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf("analysis %s, %d rounds", r.Shape, r.Rounds)) + "\n\n")

	b.WriteString(s.Header.Render("entropy (bits)") + "\n")
	for _, row := range []struct {
		name string
		e    imagestats.EntropyResult
	}{
		{"original ", r.Original.Entropy},
		{"encrypted", r.Encrypted.Entropy},
	} {
		fmt.Fprintf(&b, "%s %s %s", s.Label.Render(row.name), s.Meter(row.e.Overall/8, 32), s.Value.Render(fmt.Sprintf("%.4f", row.e.Overall)))
		for c, v := range row.e.Channels {
			fmt.Fprintf(&b, "  c%d=%.3f", c, v)
		}
		b.WriteByte('\n')
	}

	b.WriteString("\n" + s.Header.Render("adjacent pixel correlation") + "\n")
	ct := s.table("DIRECTION", "ORIGINAL", "ENCRYPTED")
	for i := range r.Original.Correlation {
		ct.Row(r.Original.Correlation[i].Direction,
			fmt.Sprintf("%+.4f", r.Original.Correlation[i].Gray),
			fmt.Sprintf("%+.4f", r.Encrypted.Correlation[i].Gray))
	}
	b.WriteString(ct.String() + "\n")

	b.WriteString("\n" + s.Header.Render("similarity") + "\n")
	b.WriteString(s.KeyValue("MSE plain/cipher", fmt.Sprintf("%.2f", r.MSEPlainEncrypted)) + "  ")
	b.WriteString(s.KeyValue("PSNR", fmt.Sprintf("%.2f dB", r.PSNRPlainEncrypted)) + "  ")
	b.WriteString(s.KeyValue("SSIM", fmt.Sprintf("%.4f", r.SSIMPlainEncrypted)) + "\n")
	b.WriteString(s.KeyValue("decryption", s.Verdict(r.MSEPlainDecrypted == 0, "exact", fmt.Sprintf("MSE %.2f", r.MSEPlainDecrypted))) + "\n")

	if len(r.NoiseResistance) > 0 {
		b.WriteString("\n" + s.Header.Render("noise resistance") + "\n")
		nt := s.table("NOISE", "MSE", "PSNR", "SSIM")
		for _, n := range r.NoiseResistance {
			nt.Row(n.Level, fmt.Sprintf("%.2f", n.MSE), fmt.Sprintf("%.2f", n.PSNR), fmt.Sprintf("%.4f", n.SSIM))
		}
		b.WriteString(nt.String() + "\n")
	}

	ks := r.KeySpace
	b.WriteString("\n" + s.Header.Render("key space") + "\n")
	b.WriteString(s.KeyValue("elements", fmt.Sprintf("%d at %d digits", ks.TotalElements, ks.PrecisionDigits)) + "  ")
	b.WriteString(s.KeyValue("size", fmt.Sprintf("2^%.1f", ks.Bits)) + "  ")
	b.WriteString(s.KeyValue("vs AES-256", fmt.Sprintf("2^%.1f", ks.Bits-imagestats.AES256Bits)) + "\n")
	return b.String()
}

// PlotHistogram charts one channel histogram.
func PlotHistogram(h imagestats.Histogram, caption string, height int) string {
	data := make([]float64, len(h))
	for i, c := range h {
		data[i] = float64(c)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(64),
		asciigraph.Caption(caption),
	)
}

// PlotSeries charts an arbitrary series such as a trajectory component.
func PlotSeries(data []float64, caption string, height, width int) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
