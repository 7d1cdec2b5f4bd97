package render

import (
	"fmt"
	"strings"
)

// scriptBuilder accumulates the control-code string dispatched to the
// display surface. Each helper mirrors one function-call template of the
// injected moledit/datagrapher script API.
type scriptBuilder struct {
	sb strings.Builder
}

func (b *scriptBuilder) String() string {
	return b.sb.String()
}

func (b *scriptBuilder) appendf(format string, args ...any) {
	fmt.Fprintf(&b.sb, format, args...)
}

func (b *scriptBuilder) setMoleditSize(width, height int) {
	b.appendf("_set_moledit_size(%d,%d);", width, height)
}

func (b *scriptBuilder) setMoleditBackground(r, g, bl int) {
	b.appendf("_set_moledit_background(%d,%d,%d);", r, g, bl)
}

func (b *scriptBuilder) setMoleditGeometry(geometryJSON string) {
	b.appendf("_set_moledit_geometry('%s');", geometryJSON)
}

func (b *scriptBuilder) setMoleditDipoleMoment(value string) {
	b.appendf("_set_moledit_dipole_moment('%s');", value)
}

func (b *scriptBuilder) setMoleditPartialCharge(value string) {
	b.appendf("_set_moledit_partial_charge('%s');", value)
}

func (b *scriptBuilder) setMoleditVibrationalMode(value string, mode int, freq, scale float64) {
	b.appendf("_set_moledit_vibrational_mode('%s', %d, %f, %f);", value, mode, freq, scale)
}

// setMoleditWavefunction also triggers the screenshot from the renderer's
// own completion callback, so no display call follows it.
func (b *scriptBuilder) setMoleditWavefunction(jobNumber int, kind string, index, port int, transparent bool) {
	b.appendf("_set_moledit_wavefunction(%d,'%s', %d, %d, %s);", jobNumber, kind, index, port, jsBool(transparent))
}

func (b *scriptBuilder) setDatagrapherSpectrum(kind, value string, peakWidth float64) {
	b.appendf("_set_datagrapher_%s('%s', %f);", kind, value, peakWidth)
}

func (b *scriptBuilder) setDatagrapherUVVisSpectrum(value, units string, peakWidth float64) {
	b.appendf("_set_datagrapher_uvvis_spectrum('%s', '%s', %f);", value, units, peakWidth)
}

func (b *scriptBuilder) setDatagrapherNMRSpectrum(value, atomType string, peakWidth float64, relative int) {
	b.appendf("_set_datagrapher_nmr_spectrum('%s', '%s', %f, %d);", value, atomType, peakWidth, relative)
}

func (b *scriptBuilder) setDatagrapherH1NMRSpectrum(value string, peakWidth, protonCoupling, nmrField float64, relative int) {
	b.appendf("_set_datagrapher_h1nmr_spectrum('%s', %f, %f, %f, %d);", value, peakWidth, protonCoupling, nmrField, relative)
}

func (b *scriptBuilder) setXRange(min, max float64) {
	b.appendf("_set_x_range(%f, %f);", min, max)
}

func (b *scriptBuilder) setYRange(min, max float64) {
	b.appendf("_set_y_range(%f, %f);", min, max)
}

func (b *scriptBuilder) rotateMoleditView(rx, ry, rz float64) {
	b.appendf("_rotate_moledit_view(%f,%f,%f);", rx, ry, rz)
}

func (b *scriptBuilder) displayMoleditScreenshot(port int, transparent bool) {
	b.appendf("_display_moledit_screenshot(%d,%s);", port, jsBool(transparent))
}

func (b *scriptBuilder) displayDatagrapherScreenshot(port int) {
	b.appendf("_display_datagrapher_screenshot(%d);", port)
}

func jsBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// wrapWhenReady defers execution until the injected panels have finished
// loading and the host render lock is free.
func wrapWhenReady(script string) string {
	return fmt.Sprintf("_call_when_ready(function(){%s})", script)
}

// bootstrapHTML is the markup injected once per client lifetime: the
// moledit and datagrapher applets, hidden off-view, plus the readiness and
// render-lock plumbing their asynchronous loading requires.
func bootstrapHTML(htmlBase, cgiBase string) string {
	return fmt.Sprintf(`<script src='%[1]s/javascript/jquery.js'></script>`+
		`<script src='%[1]s/javascript/moledit_js/moledit_js.nocache.js'></script>`+
		`<script src='%[1]s/javascript/jupyter_moledit.js'></script>`+
		`<script>
if(document.getElementById('moledit-panel'))
    document.getElementById('moledit-panel').remove();
if(document.getElementById('datagrapher-panel'))
    document.getElementById('datagrapher-panel').remove();
var moledit_div = document.createElement('div');
moledit_div.innerHTML = "<DIV ID='moledit-panel' CLASS='gwt-app' STYLE='width:300px; height:300px; visibility: hidden; position: absolute' orbitalSrc='%[2]s/get_orbital.cgi' viewOnly='true' isJupyter='true'></DIV><DIV ID='datagrapher-panel' CLASS='gwt-app' STYLE='width: 300px; height: 300px; visibility: hidden; position: absolute'></DIV>";
document.body.prepend(moledit_div);
var exception_count = 0;
function _call_when_ready(func) {
    const ready = document.getElementById('moledit-panel').children.length > 0 && document.getElementById('datagrapher-panel').children.length > 0 && _render_lock();
    if (!ready) {
        setTimeout(function() {_call_when_ready(func)}, 100);
        return;
    }
    try {
        func();
        exception_count = 0;
    }
    catch(e) {
        console.log(e);
        _clear_lock();
        if (exception_count++ < 3)
            setTimeout(function() {_call_when_ready(func)}, 1000);
    }
}
function _render_lock() {
    if (window.render_lock > 0 && Date.now() - window.render_lock < 5000) {
        return false;
    }
    else {
        window.render_lock = Date.now();
        return true;
    }
}
function _clear_lock() {
    window.render_lock = 0;
}
</script>`, htmlBase, cgiBase)
}
