// Package automation runs batches of altitude-hold simulations: scripted
// YAML scenarios and Monte Carlo trials over the initial state.
//
// A scenario file:
//
//	name: damping-ladder
//	steps:
//	  - name: slow
//	    preset: reference
//	  - name: fast
//	    preset: reference
//	    overrides:
//	      adaptation.damping: 0.001
//	    save: true
package automation
