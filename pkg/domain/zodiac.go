package domain

// Animal is one of the twelve zodiac animals.
type Animal string

const (
	AnimalRat     Animal = "Rat"
	AnimalOx      Animal = "Ox"
	AnimalTiger   Animal = "Tiger"
	AnimalRabbit  Animal = "Rabbit"
	AnimalDragon  Animal = "Dragon"
	AnimalSnake   Animal = "Snake"
	AnimalHorse   Animal = "Horse"
	AnimalGoat    Animal = "Goat"
	AnimalMonkey  Animal = "Monkey"
	AnimalRooster Animal = "Rooster"
	AnimalDog     Animal = "Dog"
	AnimalPig     Animal = "Pig"
)

// Animals lists the animals in cycle order. Index 0 is the first year of the cycle.
var Animals = [12]Animal{
	AnimalRat, AnimalOx, AnimalTiger, AnimalRabbit, AnimalDragon, AnimalSnake,
	AnimalHorse, AnimalGoat, AnimalMonkey, AnimalRooster, AnimalDog, AnimalPig,
}

// Valid reports whether a is one of the twelve animals.
func (a Animal) Valid() bool {
	for _, known := range Animals {
		if a == known {
			return true
		}
	}
	return false
}

// Element is one of the five elements. Each spans two consecutive cycle years.
type Element string

const (
	ElementWood  Element = "Wood"
	ElementFire  Element = "Fire"
	ElementEarth Element = "Earth"
	ElementMetal Element = "Metal"
	ElementWater Element = "Water"
)

// Elements lists the elements in cycle order.
var Elements = [5]Element{ElementWood, ElementFire, ElementEarth, ElementMetal, ElementWater}

// Valid reports whether e is one of the five elements.
func (e Element) Valid() bool {
	for _, known := range Elements {
		if e == known {
			return true
		}
	}
	return false
}

// Sign is the animal and element pair assigned to a birthdate.
type Sign struct {
	Animal  Animal  `json:"animal"`
	Element Element `json:"element"`
}
