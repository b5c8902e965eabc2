package alphabet

// Emoji is the built-in digit set. Each entry is a single code point and no
// entry repeats; variation selectors are deliberately left out.
const Emoji = "✊✋⬛⭐🌍🌎🌏🌑🌒🌓🌔🌕🌖🌗🌘🌙🌚🌛🌜🌝🌞🌟🍇🍉🍊🍋🍌🍎🍏🍐" +
	"🐃🐅🐆🐊🐋🐌🐍🐒🐔🐗🐘🐙🐛🐜🐝🐞🐟🐠🐡🐢🐣🐤🐥🐦🐧🐨🐪🐫🐬🐭🐮🐯🐰🐱🐳🐴" +
	"🐵🐶🐷🐸🐹🐺🐻🐼🐽👀👁👆👇👈👉👊👋👌👍👏👐👻👽👿💀💨💩💪💫🕷🕸🖐🖖" +
	"😀😁😂😃😄😆😇😈😉😊😋😌😍😎😏😐😑😒😔😕😖😗😘😙😚😛😜😝😦😧😨😪😬😮😯" +
	"😱😲😳😴😵😶😷😸😹😺😻😼😽😾😿🙀🙂🙈🙉🙊🙌🙏🤌🤏🤐🤑🤓🤔🤗🤘🤙🤚🤛🤜🤝🤞" +
	"🤟🤠🤡🤣🤤🤥🤨🤩🤪🤫🤭🤯🤲🥰🥱🥲🥳🥴🥶🥸🥺🦀🦁🦂🦄🦅🦆🦇🦈🦉🦊🦋🦍🦎🦏🦐" +
	"🦑🦒🦓🦕🦖🦗🦘🦛🦞🦟🦣🦧🦬🦭🦾🧐🧠🪐🪰🪱🪲🪳"

// Default returns a fresh Alphabet over Emoji in its canonical order.
func Default() *Alphabet {
	return MustParse(Emoji)
}
