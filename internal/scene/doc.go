// Package scene builds the runtime visual tree from a layout document.
//
// A Registry maps element types to factories. The Builder walks the layout
// depth-first, asks the registry for each node's factory, attaches every
// child to its parent and then publishes the child's "<label>_added"
// notification. Dependent elements rely on that order: by the time a node's
// notification fires, the node is already part of its parent.
//
// All scene state is owned by the UI loop. Build, Tree.Close and every
// element callback run there.
package scene
