/*
Package zodiac assigns a zodiac animal and element to a birthdate.

The cycle year of a birthdate is its calendar year, or the previous year when
the date falls strictly before that year's lunar new year. The animal follows a
12-year cycle and the element a 10-year cycle in which each element spans two
consecutive years. Lunar new year dates come from a static table covering
1900 to 2029.
*/
package zodiac
