// Package loader compiles CUE model documents into graph.Composite values.
//
// A document declares named models under the top-level "model" field:
//
//	model: motor: {
//		functions: [{name: "payload", space: "Nat"}]
//		resources: [{name: "mass", space: "Nat"}]
//		nodes: {
//			sum: {
//				dp: {type: "SumNat", n: 2}
//				functions: ["payload", "weight"]
//				resources: ["load"]
//			}
//			motor: {
//				dp: {
//					type: "Catalogue"
//					fun:  "Nat"
//					res:  "Nat"
//					entries: [{name: "small", f: 5, r: 1}]
//				}
//				functions: ["torque"]
//				resources: ["mass"]
//			}
//		}
//		connections: [
//			{from: "_.payload", to: "sum.payload"},
//			{from: "sum.load", to: "motor.torque"},
//			{from: "motor.mass", to: "sum.weight"},
//			{from: "motor.mass", to: "_.mass"},
//		]
//	}
//
// A node may instead reference another model of the same document with
// {model: "name"}; the referenced model becomes a nested composite.
//
// Spaces are written as "Nat", "Int", "Rcomp", "Rcomp[unit]", a list of
// spaces (a product, [] being the empty product) or a finite poset
// {elements: [...], relations: [["a", "b"], ...]}. Points are numbers,
// strings for finite posets, lists for products and "top" for ⊤.
//
// Errors are *LoadError values carrying a code and the CUE source position.
package loader
