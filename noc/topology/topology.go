// Package topology describes a network fabric as components, typed ports,
// and the connections that join them. It is a static description: the
// simulator reads it but never mutates it.
package topology

import "fmt"

// ComponentKind enumerates the kinds of components a fabric can contain.
type ComponentKind int

// The supported component kinds.
const (
	KindInvalid ComponentKind = iota
	KindNetworkInterfaceSrc
	KindNetworkInterfaceSink
	KindLink
	KindRouter
)

func (k ComponentKind) String() string {
	switch k {
	case KindNetworkInterfaceSrc:
		return "NetworkInterfaceSrc"
	case KindNetworkInterfaceSink:
		return "NetworkInterfaceSink"
	case KindLink:
		return "Link"
	case KindRouter:
		return "Router"
	default:
		return fmt.Sprintf("ComponentKind(%d)", int(k))
	}
}

// PortDirection tells whether a port receives data (Input) or drives data
// (Output). Credits always flow against the data direction.
type PortDirection int

// The two port directions.
const (
	Input PortDirection = iota
	Output
)

func (d PortDirection) String() string {
	if d == Input {
		return "Input"
	}
	return "Output"
}

// ComponentID is a dense index identifying a component within a Network.
type ComponentID int

// ConnectionID is a dense index identifying a connection within a Network.
type ConnectionID int

// InvalidConnection marks a port that has not been connected yet.
const InvalidConnection ConnectionID = -1

// PortID identifies a port as a component plus the port's index on that
// component.
type PortID struct {
	Component ComponentID
	Port      int
}

// Port is one attachment point on a component.
type Port struct {
	Direction  PortDirection
	Connection ConnectionID
}

// Component is one node of the fabric.
type Component struct {
	Name  string
	Kind  ComponentKind
	Ports []Port
}

// Connection joins exactly one output port to one input port. Data phits
// travel Src to Dst; credits travel Dst to Src.
type Connection struct {
	Src PortID
	Dst PortID
}

// Network is the complete static description of a fabric.
type Network struct {
	components  []Component
	connections []Connection
	nameIndex   map[string]ComponentID
}

// NewNetwork creates an empty Network.
func NewNetwork() *Network {
	return &Network{
		nameIndex: make(map[string]ComponentID),
	}
}

// AddComponent adds a component with no ports and returns its ID. Names
// must be unique within the network.
func (n *Network) AddComponent(name string, kind ComponentKind) ComponentID {
	if _, exists := n.nameIndex[name]; exists {
		panic(fmt.Sprintf("component %s already exists", name))
	}

	id := ComponentID(len(n.components))
	n.components = append(n.components, Component{Name: name, Kind: kind})
	n.nameIndex[name] = id

	return id
}

// AddPort adds a port to a component and returns its ID.
func (n *Network) AddPort(c ComponentID, dir PortDirection) PortID {
	comp := &n.components[c]
	id := PortID{Component: c, Port: len(comp.Ports)}
	comp.Ports = append(comp.Ports, Port{
		Direction:  dir,
		Connection: InvalidConnection,
	})

	return id
}

// Connect wires an output port to an input port and returns the new
// connection's ID. Port directions and prior connections are validated.
func (n *Network) Connect(src, dst PortID) (ConnectionID, error) {
	srcPort := n.port(src)
	dstPort := n.port(dst)

	if srcPort.Direction != Output {
		return InvalidConnection,
			fmt.Errorf("connection source %v is not an output port", src)
	}

	if dstPort.Direction != Input {
		return InvalidConnection,
			fmt.Errorf("connection destination %v is not an input port", dst)
	}

	if srcPort.Connection != InvalidConnection ||
		dstPort.Connection != InvalidConnection {
		return InvalidConnection,
			fmt.Errorf("port already connected: %v -> %v", src, dst)
	}

	id := ConnectionID(len(n.connections))
	n.connections = append(n.connections, Connection{Src: src, Dst: dst})
	srcPort.Connection = id
	dstPort.Connection = id

	return id, nil
}

// ComponentCount returns the number of components.
func (n *Network) ComponentCount() int {
	return len(n.components)
}

// Component returns the component with the given ID.
func (n *Network) Component(id ComponentID) *Component {
	return &n.components[id]
}

// ComponentByName looks a component up by its unique name.
func (n *Network) ComponentByName(name string) (ComponentID, bool) {
	id, ok := n.nameIndex[name]
	return id, ok
}

// ConnectionCount returns the number of connections.
func (n *Network) ConnectionCount() int {
	return len(n.connections)
}

// Connection returns the connection with the given ID.
func (n *Network) Connection(id ConnectionID) Connection {
	return n.connections[id]
}

// PortConnection returns the connection attached to a port, or
// InvalidConnection.
func (n *Network) PortConnection(p PortID) ConnectionID {
	return n.port(p).Connection
}

// PortDirectionOf returns the direction of a port.
func (n *Network) PortDirectionOf(p PortID) PortDirection {
	return n.port(p).Direction
}

// PortsByDirection returns a component's ports of one direction, ordered by
// port index. The position of a port in this list is its directional index,
// which routing tables and routers use.
func (n *Network) PortsByDirection(
	c ComponentID,
	dir PortDirection,
) []PortID {
	var ports []PortID
	for i, p := range n.components[c].Ports {
		if p.Direction == dir {
			ports = append(ports, PortID{Component: c, Port: i})
		}
	}

	return ports
}

// DirectionalPortIndex returns the position of a port among its component's
// ports of the same direction.
func (n *Network) DirectionalPortIndex(p PortID) (int, error) {
	if p.Component < 0 || int(p.Component) >= len(n.components) ||
		p.Port < 0 || p.Port >= len(n.components[p.Component].Ports) {
		return 0, fmt.Errorf("port %v does not exist", p)
	}

	dir := n.port(p).Direction
	index := 0
	for i := 0; i < p.Port; i++ {
		if n.components[p.Component].Ports[i].Direction == dir {
			index++
		}
	}

	return index, nil
}

func (n *Network) port(p PortID) *Port {
	return &n.components[p.Component].Ports[p.Port]
}
