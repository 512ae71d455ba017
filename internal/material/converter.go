package material

import (
	"log/slog"
	"strings"
)

// SourceShaderFamily is the only shader family converted.
const SourceShaderFamily = "Standard"

// Property and keyword names written during conversion.
const (
	PropMainTex          = "_MainTex"
	PropColor            = "_Color"
	PropMode             = "_Mode"
	PropTransparentMode  = "_TransparentMode"
	PropSrcBlend         = "_SrcBlend"
	PropDstBlend         = "_DstBlend"
	PropZWrite           = "_ZWrite"
	KeywordAlphaBlend    = "_ALPHABLEND_ON"
	KeywordAlphaTest     = "_ALPHATEST_ON"
	KeywordAlphaPremulti = "_ALPHAPREMULTIPLY_ON"

	// Blend factors: source alpha and one minus source alpha.
	blendSrcAlpha         = 5
	blendOneMinusSrcAlpha = 10
)

// PropertyMapping renames source properties to their target equivalents.
var PropertyMapping = map[string]string{
	"_MainTex":       "_MainTex",
	"_BumpMap":       "_BumpMap",
	"_Color":         "_Color",
	"_Metallic":      "_Metallic",
	"_Glossiness":    "_Smoothness",
	"_BumpScale":     "_BumpScale",
	"_OcclusionMap":  "_OcclusionMap",
	"_EmissionMap":   "_EmissionMap",
	"_EmissionColor": "_EmissionColor",
}

// SkipReason explains why a material was left alone.
type SkipReason string

// Skip reasons.
const (
	SkipNone          SkipReason = ""
	SkipAlreadyTarget SkipReason = "already uses target shader"
	SkipNotStandard   SkipReason = "not a Standard shader"
)

// Conversion is the outcome for one material.
type Conversion struct {
	Material    *Material
	Transparent bool
	Skipped     SkipReason
}

// Converter rewrites materials to the target shader.
type Converter struct {
	settings Settings
	log      *slog.Logger
}

// NewConverter returns a converter. A nil logger discards output.
func NewConverter(settings Settings, log *slog.Logger) *Converter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Converter{settings: settings, log: log}
}

// ShouldConvert reports whether m is a Standard-family material not yet on the
// target shader.
func (c *Converter) ShouldConvert(m *Material) (bool, SkipReason) {
	if strings.Contains(m.Shader, c.settings.TargetShader) {
		return false, SkipAlreadyTarget
	}
	if !strings.Contains(m.Shader, SourceShaderFamily) {
		return false, SkipNotStandard
	}
	return true, SkipNone
}

// Convert returns a converted copy of src. src is never modified.
func (c *Converter) Convert(src *Material) Conversion {
	if ok, reason := c.ShouldConvert(src); !ok {
		c.log.Debug("material skipped", "material", src.Name, "shader", src.Shader, "reason", reason)
		return Conversion{Material: src, Skipped: reason}
	}

	out := &Material{Name: src.Name, Shader: c.settings.TargetShader}
	transferProperties(src, out)

	transparent := false
	if c.settings.EnableTransparency && c.settings.AutoDetectTransparency && c.DetectTransparency(src) {
		c.applyTransparency(out)
		transparent = true
	}
	c.log.Info("converted material", "material", src.Name, "from", src.Shader, "to", out.Shader, "transparent", transparent)
	return Conversion{Material: out, Transparent: transparent}
}

// transferProperties copies mapped properties under their target names, then
// every source property under its own name.
func transferProperties(src *Material, dst *Material) {
	for from, to := range PropertyMapping {
		if v, ok := src.Floats[from]; ok {
			dst.SetFloat(to, v)
		}
		if v, ok := src.Textures[from]; ok {
			if dst.Textures == nil {
				dst.Textures = map[string]Texture{}
			}
			dst.Textures[to] = v
		}
		if v, ok := src.Colors[from]; ok {
			if dst.Colors == nil {
				dst.Colors = map[string]Color{}
			}
			dst.Colors[to] = v
		}
	}
	CopyProperties(src, dst)
}

// DetectTransparency is true when the main texture has alpha, the main color's
// alpha is below 1 - AlphaThreshold, or the rendering mode is fade (2) or
// transparent (3). A material without a main color is not judged by color.
func (c *Converter) DetectTransparency(m *Material) bool {
	if tex, ok := m.Textures[PropMainTex]; ok && tex.HasAlpha {
		c.log.Debug("alpha channel in main texture", "material", m.Name, "texture", tex.Path)
		return true
	}
	if col, ok := m.Colors[PropColor]; ok && col.Alpha() < 1-c.settings.AlphaThreshold {
		c.log.Debug("transparent main color", "material", m.Name, "alpha", col.Alpha())
		return true
	}
	if mode, ok := m.Floats[PropMode]; ok && (mode == 2 || mode == 3) {
		c.log.Debug("transparent rendering mode", "material", m.Name, "mode", mode)
		return true
	}
	return false
}

func (c *Converter) applyTransparency(m *Material) {
	m.SetFloat(PropTransparentMode, float64(c.settings.TransparencyMode))
	m.RenderQueue = c.settings.RenderQueue
	m.SetFloat(PropSrcBlend, blendSrcAlpha)
	m.SetFloat(PropDstBlend, blendOneMinusSrcAlpha)
	m.SetFloat(PropZWrite, 0)
	m.EnableKeyword(KeywordAlphaBlend)
	m.DisableKeyword(KeywordAlphaTest)
	m.DisableKeyword(KeywordAlphaPremulti)
}
