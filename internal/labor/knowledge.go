package labor

import (
	"strings"

	"github.com/Simplici0/fabquote/internal/domain"
)

const weldingRules = `WELDING PROCESS SELECTION:
- MIG (ER70S-6, 75/25 gas): structural frames, furniture legs, railings, gates. Mild steel 12ga and heavier. Long welds.
- TIG (ER70S-2 mild, ER308L stainless): stainless steel, thin sheet 14ga and lighter, visible or decorative welds, ground-flush joints.
- TIG labor is 2.5 to 3x MIG for the same weld length.
- Fillet size: 3/4 of the thinner plate. A 3/16" fillet is enough for most furniture on 1" tube.`

const distortionRules = `DISTORTION CONTROL:
- Furniture with a flat bar top: HIGH risk. Alternate welds and backstep.
- Railing post-to-rail: MEDIUM. Tack sequence and balanced welding.
- Gate with diagonal frame: HIGH. Pre-set and weld toward center.
- Sign frame in thin sheet: HIGH. TIG or intermittent MIG.
- Heavy structural frame: LOW.
- Tack all corners before continuous welds and check square at every stage.`

const millScaleRules = `MILL SCALE:
- Powder coat or paint: skip mill scale removal; clean and degrease only.
- Clear coat, raw, brushed or patina: remove mill scale after all welding.
- TIG weld zones: remove scale before welding, it causes porosity.`

const stainlessRules = `STAINLESS STEEL:
- Stainless filler only (ER308L for 304, ER309L for dissimilar).
- Dedicated wheels, brushes and clamps; carbon contamination rusts.
- Back-purge full-penetration welds on tube and pipe.
- Slower to cut; use stainless-rated blades.`

const furnitureSequence = `FURNITURE BUILD SEQUENCE:
1. Cut all tube stock and deburr.
2. Cut and fit decorative flat bar and sheet.
3. Fixture legs and aprons on a flat table and check square.
4. Tack corners, check diagonals, adjust.
5. Weld aprons alternating sides.
6. Add stretchers and lower elements, then decorative elements.
7. Check level and twist, grind per finish spec, finish.
8. Install glass or wood after finish, hardware last.`

const railingSequence = `RAILING BUILD SEQUENCE:
1. Field-measure existing structures.
2. Build top rail and bottom plate as flat assemblies.
3. Jig balusters for spacing and tack them all before welding.
4. Weld balusters from center out, then rail connections.
5. Grind welds visible from the walking side and prime before install.`

const gateSequence = `GATE BUILD SEQUENCE:
1. Lay out the frame on the table; square is critical.
2. Tack and check diagonals; distortion is amplified on large frames.
3. Weld the frame with backstep on long members, then the infill.
4. Add hinge and latch plates before finishing and mock-install hinges.
5. Finish, install hardware, install gate.`

const laborStandards = `LABOR TIME STANDARDS:
- Chop saw cut on 1" tube: 2 to 3 min. On 2" tube: 3 to 5 min.
- Cope or notch a tube end: 10 to 20 min.
- MIG fillet travel 12 to 18 in/min; TIG fillet 4 to 6 in/min.
- Grind weld flush: 5 to 10 min per ft.
- Stainless multiplier 1.5x. Thin material (16ga and lighter) 1.4x. Overhead position 1.7x.`

// Knowledge returns the shop rules relevant to a job for prompt context.
func Knowledge(job domain.JobType, finish string, stainless bool) string {
	sections := []string{weldingRules, distortionRules}
	if containsAny(strings.ToLower(finish), bareMetalKeywords...) {
		sections = append(sections, millScaleRules)
	}
	switch jt := string(job); {
	case strings.Contains(jt, "furniture") || strings.Contains(jt, "table"):
		sections = append(sections, furnitureSequence)
	case strings.Contains(jt, "railing"):
		sections = append(sections, railingSequence)
	case strings.Contains(jt, "gate"):
		sections = append(sections, gateSequence)
	}
	if stainless {
		sections = append(sections, stainlessRules)
	}
	sections = append(sections, laborStandards)
	return strings.Join(sections, "\n\n")
}
