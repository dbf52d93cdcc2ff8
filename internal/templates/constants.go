package templates

var builtinConstants = map[string]string{
	"USAGE_KASTHURI": `
For dry skin, mix with milk or curd.
For oily skin, use rose water or aloe vera.
For sensitive skin, use with red sandalwood powder + rose water.
Apply after sunset, leave for 15-20 mins, and rinse with plain water (no soap).
Use 5 times in first week, after that weekly 2-3 times.
Always do a patch test first.
`,

	"USAGE_CARROT": `
Apply 4-5 drops to clean skin and massage in circular motion.
Leave overnight and wash in the morning.
For hair, apply to scalp and ends, leave 30 mins, and shampoo.
Brightens skin, fades tan, and is non-sticky.
`,

	"CANCEL_TEMPLATE": `
Hi! 😊 Our products are not like regular cosmetics.
We grow the ingredients on our own farm in Wayanad, Kerala and make everything by hand in small batches.
It's 100% chemical-free and follows a 200-year-old traditional formula.
Please think again before cancelling - we put so much care into every bottle just for you. ❤️
`,

	"COMBO_SUGGESTIONS": `
Here are some suggestions that work great for different concerns:
• For pigmentation: Melasma Shield + Kasthuri Manjal
• For pimples: Red Sandalwood Powder or White Turmeric + Carrot Oil
• For dry skin: Carrot Oil or Rose Body Butter
• For dandruff/hair fall: No-Flak Oil or Coconut Oil
• For babies: ABC Face & Body Oil
`,

	"PAYMENT_INSTRUCTIONS": `
Great! How would you like to pay?
We support:
• Google Pay – no extra cost
• Cash on Delivery – ₹30 extra applies

Can I collect your full billing details?
`,
}
